package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

func TestShiftEndpoints(t *testing.T) {
	fp := setupFloorPlan(t)

	w, env := doJSON(t, fp.r, http.MethodPost, fp.url("/shifts"), fp.owner, gin.H{
		"name": "Dinner", "startTime": "18:00", "endTime": "23:00", "days": []string{"Friday", "Saturday"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dinner models.Shift
	require.NoError(t, json.Unmarshal(env.Data, &dinner))
	assert.True(t, dinner.Active)
	assert.Equal(t, []string{"Friday", "Saturday"}, []string(dinner.Days))

	w, _ = doJSON(t, fp.r, http.MethodPost, fp.url("/shifts"), fp.owner, gin.H{
		"name": "Broken", "startTime": "25:00", "endTime": "23:00", "days": []string{"Friday"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, fp.r, http.MethodPatch, fp.url("/shifts/"+dinner.ID+"/active"), fp.owner, gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var toggled models.Shift
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.False(t, toggled.Active)

	w, _ = doJSON(t, fp.r, http.MethodPatch, fp.url("/shifts/"+dinner.ID+"/active"), fp.owner, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, fp.r, http.MethodPatch, fp.url("/shifts/"+dinner.ID), fp.owner, gin.H{"endTime": "22:30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = doJSON(t, fp.r, http.MethodGet, fp.url("/shifts"), fp.stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reservations booked into the shift.
	w, env = doJSON(t, fp.r, http.MethodPost, fp.url("/guests"), fp.owner, gin.H{"name": "Ada", "phone": "+15550001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var guest models.Guest
	require.NoError(t, json.Unmarshal(env.Data, &guest))

	for _, start := range []string{"2030-06-07T19:00", "2030-06-08T19:00"} {
		w, _ = doJSON(t, fp.r, http.MethodPost, fp.url("/reservations"), fp.owner, gin.H{
			"guestId": guest.ID, "startTime": start, "numberOfGuests": 2, "shiftId": dinner.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w, _ = doJSON(t, fp.r, http.MethodPost, fp.url("/reservations"), fp.owner, gin.H{
		"guestId": guest.ID, "startTime": "2030-06-07T12:00", "numberOfGuests": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/reservations?shiftId="+dinner.ID), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Items []models.Reservation `json:"items"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.Total)

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/reservations/by-shift/"+dinner.ID+"?date=2030-06-07"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var onDay []models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &onDay))
	assert.Len(t, onDay, 1)

	w, _ = doJSON(t, fp.r, http.MethodGet, fp.url("/reservations/by-shift/missing"), fp.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/shifts/reservation-counts?startDate=2030-06-07&endDate=2030-06-08"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var counts []services.ShiftReservationCount
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	require.Len(t, counts, 2)
	assert.Equal(t, services.ShiftReservationCount{ShiftID: dinner.ID, Date: "2030-06-07", Count: 1}, counts[0])

	w, _ = doJSON(t, fp.r, http.MethodGet, fp.url("/shifts/reservation-counts?startDate=bad&endDate=2030-06-08"), fp.owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, fp.r, http.MethodDelete, fp.url("/shifts/"+dinner.ID), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, fp.r, http.MethodGet, fp.url("/shifts/"+dinner.ID), fp.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/reservations"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 3, page.Total)
	for _, r := range page.Items {
		assert.Nil(t, r.ShiftID)
	}
}

func TestGuestVisitAndFloorTablesEndpoints(t *testing.T) {
	fp := setupFloorPlan(t)

	w, env := doJSON(t, fp.r, http.MethodPost, fp.url("/guests"), fp.owner, gin.H{"name": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var guest models.Guest
	require.NoError(t, json.Unmarshal(env.Data, &guest))

	w, env = doJSON(t, fp.r, http.MethodPost, fp.url("/guests/"+guest.ID+"/record-visit"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &guest))
	assert.Equal(t, 1, guest.VisitCount)
	assert.NotNil(t, guest.LastVisit)

	w, _ = doJSON(t, fp.r, http.MethodPost, fp.url("/guests/"+guest.ID+"/record-visit"), fp.stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/floors"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var floors []models.Floor
	require.NoError(t, json.Unmarshal(env.Data, &floors))
	require.Len(t, floors, 1)

	ids := []string{}
	for _, name := range []string{"T1", "T2"} {
		w, env = doJSON(t, fp.r, http.MethodPost, fp.url("/tables"), fp.owner, gin.H{
			"name": name, "capacity": 2, "floorId": floors[0].ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var table models.Table
		require.NoError(t, json.Unmarshal(env.Data, &table))
		ids = append(ids, table.ID)
	}
	fp.createTable(t, "Loose", 2, 0, 0)
	w, _ = doJSON(t, fp.r, http.MethodPost, fp.url("/tables/merge"), fp.owner, gin.H{"tableIds": ids})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = doJSON(t, fp.r, http.MethodGet, fp.url("/floors/"+floors[0].ID+"/tables"), fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var onFloor []models.Table
	require.NoError(t, json.Unmarshal(env.Data, &onFloor))
	assert.Len(t, onFloor, 3)

	w, _ = doJSON(t, fp.r, http.MethodGet, fp.url("/floors/missing/tables"), fp.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMyRestaurants(t *testing.T) {
	fp := setupFloorPlan(t)
	admin := tokenFor(t, utils.Principal{UID: "uid-admin", Email: "admin@example.com", Admin: true})

	w, env := doJSON(t, fp.r, http.MethodGet, "/restaurants/my-restaurants", fp.owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mine []models.Restaurant
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, fp.restaurantID, mine[0].ID)

	w, env = doJSON(t, fp.r, http.MethodGet, "/restaurants/my-restaurants", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Empty(t, mine)

	w, env = doJSON(t, fp.r, http.MethodGet, "/restaurants", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Restaurant
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
}

func TestFloorStreamWithoutHub(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouterForTest(t, db, nil)
	allowEmail(t, db, "owner@example.com")
	owner := tokenFor(t, utils.Principal{UID: "uid-owner", Email: "owner@example.com"})

	w, env := doJSON(t, r, http.MethodPost, "/restaurants", owner, gin.H{"name": "Bistro"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var restaurant models.Restaurant
	require.NoError(t, json.Unmarshal(env.Data, &restaurant))

	w, env = doJSON(t, r, http.MethodGet, "/ws/floor?restaurantId="+restaurant.ID, owner, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "realtime feed is not enabled", env.Message)
}
