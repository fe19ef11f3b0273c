package routes

import (
	"context"
	"net/http"
	"time"

	"clinic-appointments-server/internal/audit"
	"clinic-appointments-server/internal/config"
	"clinic-appointments-server/internal/handlers"
	"clinic-appointments-server/internal/lifecycle"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/stats"
	"clinic-appointments-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRoutes configures the application routes. recorder receives
// lifecycle audit events; when it can also read history the admin history
// endpoint serves from it.
func SetupRoutes(router *gin.Engine, st *store.Store, cfg *config.Config, recorder audit.Recorder, log zerolog.Logger) {
	loc, err := cfg.Location()
	if err != nil {
		log.Warn().Err(err).Msg("falling back to UTC")
		loc = time.UTC
	}

	lifecycleSvc := lifecycle.NewService(st.Users, st.Appointments, st, recorder, log)
	statsSvc := stats.NewService(st.Users, st.Appointments, loc)
	history, _ := recorder.(audit.HistoryReader)

	authHandler := handlers.NewAuthHandler(st, cfg)
	adminHandler := handlers.NewAdminHandler(st, statsSvc, lifecycleSvc, history)
	appointmentHandler := handlers.NewAppointmentHandler(st, lifecycleSvc)
	doctorHandler := handlers.NewDoctorHandler(st, statsSvc)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/admin/login", authHandler.AdminLogin)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/auth/profile", authHandler.GetProfile)
		private.GET("/doctors", doctorHandler.ListDoctors)
		private.GET("/doctor/stats", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.GetOwnStats)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/summary", appointmentHandler.GetSummary)
			appointmentRoutes.GET("/patient/:id", appointmentHandler.GetPatientAppointments) // Auth in handler
			appointmentRoutes.GET("/doctor/:id", appointmentHandler.GetDoctorAppointments)   // Auth in handler
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)             // Auth in handler
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/feedback", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.SubmitFeedback)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/doctors", adminHandler.GetDoctors)
			adminRoutes.POST("/doctors", adminHandler.CreateDoctor)
			adminRoutes.DELETE("/doctors/:id", adminHandler.DeleteDoctor)
			adminRoutes.GET("/doctors/:id/stats", adminHandler.GetDoctorStats)

			adminRoutes.GET("/patients", adminHandler.GetPatients)
			adminRoutes.POST("/patients", adminHandler.CreatePatient)
			adminRoutes.DELETE("/patients/:id", adminHandler.DeletePatient)
			adminRoutes.GET("/patients/:id", adminHandler.GetPatientDetail)

			adminRoutes.GET("/stats", adminHandler.GetStats)

			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.POST("/users", adminHandler.CreateUser)
			adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)

			adminRoutes.GET("/all-appointments", adminHandler.GetAllAppointments)
			adminRoutes.GET("/appointments/:id/history", adminHandler.GetAppointmentHistory)
		}
	}

	// Health check reports the database connection.
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
