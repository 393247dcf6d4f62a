package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/realtime"
	"github.com/yeremiapane/restaurant-ops/router"
	"github.com/yeremiapane/restaurant-ops/utils"
)

var testSecret = []byte("controllers-test-secret")

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// setupTestDB uses a private in-memory SQLite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupRouterForTest(t *testing.T, db *gorm.DB, hub *realtime.Hub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := utils.NewIdentityVerifier(string(testSecret), "", "")
	require.NoError(t, err)
	return router.SetupRouter(db, router.Options{Verifier: verifier, Hub: hub})
}

func tokenFor(t *testing.T, p utils.Principal) string {
	t.Helper()
	token, err := utils.IssueToken(testSecret, "", p, time.Hour)
	require.NoError(t, err)
	return token
}

func allowEmail(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	require.NoError(t, db.Create(&models.AllowedEmail{Email: email}).Error)
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestAuthRequiresToken(t *testing.T) {
	r := setupRouterForTest(t, setupTestDB(t), realtime.NewHub())

	w, env := doJSON(t, r, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Status)

	w, env = doJSON(t, r, http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", env.Message)

	expired, err := utils.IssueToken(testSecret, "", utils.Principal{UID: "u1", Email: "a@example.com"}, -time.Minute)
	require.NoError(t, err)
	w, env = doJSON(t, r, http.MethodGet, "/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", env.Message)
}

func TestAuthProvisionsAllowedUser(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouterForTest(t, db, realtime.NewHub())
	allowEmail(t, db, "chef@example.com")

	token := tokenFor(t, utils.Principal{UID: "uid-chef", Email: "chef@example.com", Name: "Chef"})
	w, env := doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "chef@example.com", me.Email)
	assert.Equal(t, models.RoleUser, me.Role)

	// query tokens are only for websocket handshakes
	w, env = doJSON(t, r, http.MethodGet, "/auth/me?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header missing", env.Message)
}

func TestAuthPendingAndDeactivated(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouterForTest(t, db, realtime.NewHub())

	token := tokenFor(t, utils.Principal{UID: "uid-new", Email: "new@example.com"})
	w, env := doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_USER_PENDING_APPROVAL", env.Code)

	allowEmail(t, db, "new@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("external_uid = ?", "uid-new").Update("revoked", true).Error)

	w, env = doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_USER_DEACTIVATED", env.Code)
}

func TestAdminRoutes(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouterForTest(t, db, realtime.NewHub())
	allowEmail(t, db, "staff@example.com")

	staff := tokenFor(t, utils.Principal{UID: "uid-staff", Email: "staff@example.com"})
	admin := tokenFor(t, utils.Principal{UID: "uid-admin", Email: "admin@example.com", Admin: true})

	w, _ := doJSON(t, r, http.MethodGet, "/users", staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/allowed-emails", admin, gin.H{"email": "host@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Status)

	w, _ = doJSON(t, r, http.MethodPost, "/allowed-emails", admin, gin.H{"email": "host@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	host := tokenFor(t, utils.Principal{UID: "uid-host", Email: "host@example.com"})
	w, _ = doJSON(t, r, http.MethodGet, "/auth/me", host, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/users?limit=10", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 3, page.Total)

	var hostUser models.User
	require.NoError(t, db.Where("external_uid = ?", "uid-host").First(&hostUser).Error)

	w, _ = doJSON(t, r, http.MethodPatch, "/users/"+hostUser.ID+"/revoke", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, r, http.MethodGet, "/auth/me", host, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_USER_DEACTIVATED", env.Code)

	w, _ = doJSON(t, r, http.MethodPatch, "/users/"+hostUser.ID+"/restore", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPatch, "/users/"+hostUser.ID+"/allowed", admin, gin.H{"allowed": false})
	require.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, r, http.MethodGet, "/auth/me", host, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_USER_PENDING_APPROVAL", env.Code)
}
