package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/controllers"
	"github.com/yeremiapane/restaurant-ops/middlewares"
	"github.com/yeremiapane/restaurant-ops/realtime"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/gorm"
)

type Options struct {
	Verifier *utils.IdentityVerifier
	Hub      *realtime.Hub
	SMS      *services.SMSService

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSAllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if opts.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}

	// Services
	gate := services.NewAccessGate(db)
	userSvc := services.NewUserService(db)
	tableSvc := services.NewTableService(db, gate)
	floorSvc := services.NewFloorService(db, gate)
	restaurantSvc := services.NewRestaurantService(db, gate)
	guestSvc := services.NewGuestService(db, gate)
	shiftSvc := services.NewShiftService(db, gate)

	var notifier services.ReservationNotifier
	if opts.SMS != nil {
		notifier = opts.SMS
	}
	reservationSvc := services.NewReservationService(db, gate, notifier)

	// Controllers
	userCtrl := controllers.NewUserController(userSvc)
	allowedCtrl := controllers.NewAllowedEmailController(services.NewAllowedEmailService(db))
	restaurantCtrl := controllers.NewRestaurantController(restaurantSvc)
	floorCtrl := controllers.NewFloorController(floorSvc)
	tableCtrl := controllers.NewTableController(tableSvc, opts.Hub)
	guestCtrl := controllers.NewGuestController(guestSvc)
	shiftCtrl := controllers.NewShiftController(shiftSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	streamCtrl := controllers.NewFloorStreamController(gate, opts.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(opts.Verifier, userSvc))

	auth.GET("/auth/me", userCtrl.Me)

	// RESTAURANTS
	auth.POST("/restaurants", restaurantCtrl.CreateRestaurant)
	auth.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	auth.GET("/restaurants/my-restaurants", restaurantCtrl.GetMyRestaurants)
	auth.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	auth.PATCH("/restaurants/:id", restaurantCtrl.UpdateRestaurant)
	auth.DELETE("/restaurants/:id", restaurantCtrl.DeleteRestaurant)

	// FLOORS (?restaurantId=)
	auth.POST("/floors", floorCtrl.CreateFloor)
	auth.GET("/floors", floorCtrl.GetAllFloors)
	auth.GET("/floors/:id", floorCtrl.GetFloorByID)
	auth.GET("/floors/:id/tables", floorCtrl.GetFloorTables)
	auth.PATCH("/floors/:id", floorCtrl.UpdateFloor)
	auth.DELETE("/floors/:id", floorCtrl.DeleteFloor)

	// TABLES (?restaurantId=)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables/merge", tableCtrl.MergeTables)
	auth.GET("/tables/:id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:id", tableCtrl.UpdateTable)
	auth.PATCH("/tables/:id/position", tableCtrl.UpdateTablePosition)
	auth.PATCH("/tables/:id/status", tableCtrl.UpdateTableStatus)
	auth.DELETE("/tables/:id", tableCtrl.DeleteTable)
	auth.POST("/tables/:id/unmerge", tableCtrl.UnmergeTables)

	// GUESTS (?restaurantId=)
	auth.POST("/guests", guestCtrl.CreateGuest)
	auth.GET("/guests", guestCtrl.GetAllGuests)
	auth.GET("/guests/:id", guestCtrl.GetGuestByID)
	auth.PATCH("/guests/:id", guestCtrl.UpdateGuest)
	auth.DELETE("/guests/:id", guestCtrl.DeleteGuest)
	auth.POST("/guests/:id/record-visit", guestCtrl.RecordVisit)

	// SHIFTS (?restaurantId=)
	auth.POST("/shifts", shiftCtrl.CreateShift)
	auth.GET("/shifts", shiftCtrl.GetAllShifts)
	auth.GET("/shifts/reservation-counts", shiftCtrl.GetReservationCounts)
	auth.GET("/shifts/:id", shiftCtrl.GetShiftByID)
	auth.PATCH("/shifts/:id", shiftCtrl.UpdateShift)
	auth.PATCH("/shifts/:id/active", shiftCtrl.SetShiftActive)
	auth.DELETE("/shifts/:id", shiftCtrl.DeleteShift)

	// RESERVATIONS (?restaurantId=)
	auth.POST("/reservations", reservationCtrl.CreateReservation)
	auth.GET("/reservations", reservationCtrl.GetAllReservations)
	auth.GET("/reservations/by-shift/:shiftId", reservationCtrl.GetReservationsByShift)
	auth.GET("/reservations/:id", reservationCtrl.GetReservationByID)
	auth.PATCH("/reservations/:id", reservationCtrl.UpdateReservation)
	auth.PATCH("/reservations/:id/table", reservationCtrl.AssignTable)
	auth.POST("/reservations/:id/cancel", reservationCtrl.CancelReservation)
	auth.DELETE("/reservations/:id", reservationCtrl.DeleteReservation)

	// SMS (?restaurantId=)
	if opts.SMS != nil {
		smsCtrl := controllers.NewSMSController(opts.SMS, restaurantSvc, gate)
		auth.GET("/sms/credits", smsCtrl.GetCredits)
		auth.GET("/sms/config", smsCtrl.GetConfig)
		auth.PATCH("/sms/config", smsCtrl.UpdateConfig)
		auth.GET("/sms/sender-ids", smsCtrl.GetSenderIDs)
		auth.POST("/sms/request-sender-id", smsCtrl.RequestSenderID)
		auth.POST("/sms/send", smsCtrl.SendSMS)
	}

	// Realtime floor plan, token via query for browsers
	auth.GET("/ws/floor", streamCtrl.Stream)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("/")
	admin.Use(middlewares.AdminOnly())

	admin.GET("/users", userCtrl.GetAllUsers)
	admin.PATCH("/users/:id/allowed", userCtrl.SetAllowed)
	admin.PATCH("/users/:id/revoke", userCtrl.RevokeUser)
	admin.PATCH("/users/:id/restore", userCtrl.RestoreUser)

	admin.GET("/allowed-emails", allowedCtrl.GetAllowedEmails)
	admin.POST("/allowed-emails", allowedCtrl.CreateAllowedEmail)
	admin.PATCH("/allowed-emails/:id", allowedCtrl.UpdateAllowedEmail)
	admin.DELETE("/allowed-emails/:id", allowedCtrl.DeleteAllowedEmail)

	return r
}
