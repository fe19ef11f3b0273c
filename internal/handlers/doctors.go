package handlers

import (
	"time"

	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/stats"
	"clinic-appointments-server/internal/store"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// DoctorHandler serves doctor listings and the doctor's own dashboard.
type DoctorHandler struct {
	Store *store.Store
	Stats *stats.Service
	Now   func() time.Time
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(st *store.Store, statsSvc *stats.Service) *DoctorHandler {
	return &DoctorHandler{Store: st, Stats: statsSvc, Now: time.Now}
}

// ListDoctors returns every doctor, for booking.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Store.Users.List(c.Request.Context(), models.RoleDoctor)
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Doctors fetched successfully", sanitizeAll(doctors))
}

// GetOwnStats returns the calling doctor's workload.
func (h *DoctorHandler) GetOwnStats(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	d, err := h.Stats.PerDoctorStats(c.Request.Context(), userID, h.Now())
	if err != nil {
		utils.RespondError(c, err, "Doctor not found")
		return
	}
	utils.Success(c, "Doctor statistics fetched successfully", d)
}
