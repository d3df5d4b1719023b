package routes

import (
	"github.com/chachabrian/tripguard-backend/internal/handlers"
	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires every endpoint onto a new gin engine.
func SetupRouter(d *handlers.Deps) *gin.Engine {
	handlers.RegisterValidators()

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	isLoggedIn := middleware.IsLoggedIn(d.Store, d.JWTSecret)
	validateTrip := middleware.ValidateTrip(d.Store)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(d, false))
			auth.POST("/registerAdmin", handlers.Register(d, true))
			auth.GET("/login", handlers.Login(d))
			auth.POST("/login", handlers.Login(d))
			auth.POST("/verify", handlers.Verify(d))
			auth.POST("/forgetPassword", handlers.ForgetPassword(d))
			auth.POST("/resetPassword", handlers.ResetPassword(d))
			auth.POST("/updatePassword", isLoggedIn, handlers.UpdatePassword(d))
			auth.GET("/profile", isLoggedIn, handlers.GetProfile(d))
			auth.POST("/deviceToken", isLoggedIn, handlers.RegisterDeviceToken(d))
		}

		trips := api.Group("/trips")
		trips.Use(isLoggedIn)
		{
			trips.POST("/createTrip", handlers.CreateTrip(d))
			trips.GET("/viewAllTrips", handlers.ViewAllTrips(d))
			trips.GET("/viewTrip/:tripId", validateTrip, middleware.AuthorizeUser(), handlers.ViewTrip(d))
			trips.POST("/updateLiveCoordinates/:tripId", validateTrip, middleware.AuthorizeTraveler(), handlers.UpdateLiveCoordinates(d))
			trips.GET("/getTripCompletionOTP/:tripId", validateTrip, middleware.AuthorizeTraveler(), handlers.GetTripCompletionOTP(d))
			trips.POST("/completeTrip/:tripId", validateTrip, middleware.AuthorizeTraveler(), handlers.CompleteTrip(d))
			trips.POST("/addFeedbackToTrip/:tripId", validateTrip, middleware.AuthorizeUser(), handlers.AddFeedbackToTrip(d))
			trips.GET("/live/:tripId", validateTrip, middleware.AuthorizeUser(), handlers.LiveTrip(d))
		}

		admin := api.Group("/admin")
		admin.Use(isLoggedIn, middleware.IsAdmin())
		{
			admin.GET("/viewAllTrips", handlers.AdminViewAllTrips(d))
			admin.POST("/viewAllTripsOfUser", handlers.AdminViewAllTripsOfUser(d))
			admin.GET("/viewAllFeedbacks", handlers.AdminViewAllFeedbacks(d))
			admin.POST("/viewFeedbackForUser", handlers.AdminViewFeedbackForUser(d))
			admin.GET("/viewFeedbackForTrip/:tripId", validateTrip, handlers.AdminViewFeedbackForTrip())
			admin.POST("/exportFeedbacks", handlers.AdminExportFeedbacks(d))
		}
	}

	return r
}
