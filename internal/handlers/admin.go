package handlers

import (
	"errors"
	"net/http"
	"time"

	"clinic-appointments-server/internal/audit"
	"clinic-appointments-server/internal/lifecycle"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/stats"
	"clinic-appointments-server/internal/store"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard: user management, cascade
// deletes and statistics.
type AdminHandler struct {
	Store     *store.Store
	Stats     *stats.Service
	Lifecycle *lifecycle.Service
	History   audit.HistoryReader
	Now       func() time.Time
}

// NewAdminHandler creates a new AdminHandler. history may be nil.
func NewAdminHandler(st *store.Store, statsSvc *stats.Service, lc *lifecycle.Service, history audit.HistoryReader) *AdminHandler {
	return &AdminHandler{Store: st, Stats: statsSvc, Lifecycle: lc, History: history, Now: time.Now}
}

func sanitizeAll(users []models.User) []models.UserSanitized {
	out := make([]models.UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	return out
}

// GetDoctors lists every doctor with its workload.
func (h *AdminHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Stats.DoctorsWithStats(c.Request.Context(), h.Now())
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// CreateDoctor adds a doctor account.
func (h *AdminHandler) CreateDoctor(c *gin.Context) {
	var req UserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	createUser(c, h.Store, &req, models.RoleDoctor, "Doctor created successfully")
}

// DeleteDoctor removes a doctor and every appointment it holds.
func (h *AdminHandler) DeleteDoctor(c *gin.Context) {
	h.deleteOwner(c, c.Param("id"), models.RoleDoctor, "Doctor not found", "Doctor deleted successfully")
}

// GetDoctorStats returns one doctor's workload.
func (h *AdminHandler) GetDoctorStats(c *gin.Context) {
	d, err := h.Stats.PerDoctorStats(c.Request.Context(), c.Param("id"), h.Now())
	if err != nil {
		utils.RespondError(c, err, "Doctor not found")
		return
	}
	utils.Success(c, "Doctor statistics fetched successfully", d)
}

// GetPatients lists every patient.
func (h *AdminHandler) GetPatients(c *gin.Context) {
	patients, err := h.Store.Users.List(c.Request.Context(), models.RolePatient)
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Patients fetched successfully", sanitizeAll(patients))
}

// CreatePatient adds a patient account.
func (h *AdminHandler) CreatePatient(c *gin.Context) {
	var req UserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	createUser(c, h.Store, &req, models.RolePatient, "Patient created successfully")
}

// DeletePatient removes a patient and every appointment it holds.
func (h *AdminHandler) DeletePatient(c *gin.Context) {
	h.deleteOwner(c, c.Param("id"), models.RolePatient, "Patient not found", "Patient deleted successfully")
}

// PatientDetailResponse is a patient joined with its appointment counts.
type PatientDetailResponse struct {
	models.UserSanitized
	stats.Patient
}

// GetPatientDetail returns a patient with its appointment counts.
func (h *AdminHandler) GetPatientDetail(c *gin.Context) {
	ctx := c.Request.Context()
	patient, err := h.Store.Users.FindByRole(ctx, c.Param("id"), models.RolePatient)
	if err != nil {
		utils.RespondError(c, err, "Patient not found")
		return
	}
	counts, err := h.Stats.PatientDetail(ctx, patient.ID)
	if err != nil {
		utils.RespondError(c, err, "Patient not found")
		return
	}
	utils.Success(c, "Patient fetched successfully", PatientDetailResponse{
		UserSanitized: patient.Sanitize(),
		Patient:       *counts,
	})
}

// GetStats returns the dashboard summary.
func (h *AdminHandler) GetStats(c *gin.Context) {
	g, err := h.Stats.GlobalStats(c.Request.Context(), h.Now())
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Statistics fetched successfully", g)
}

// GetUsers lists every user regardless of role.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.Store.Users.List(c.Request.Context(), "")
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Users fetched successfully", sanitizeAll(users))
}

// CreateUser adds a user with the role given in the body.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !req.Role.Valid() {
		utils.BadRequest(c, "Validation failed: role must be one of [admin doctor patient]")
		return
	}
	createUser(c, h.Store, &req, req.Role, "User added successfully")
}

// DeleteUser removes a user of any role. Doctors and patients lose their
// appointments with them.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if callerID, _ := middleware.GetUserIDFromContext(c); callerID == id {
		utils.BadRequest(c, "Admins cannot delete their own account")
		return
	}
	user, err := h.Store.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err, "User not found")
		return
	}
	h.deleteOwner(c, user.ID, user.Role, "User not found", "User removed successfully")
}

// DeleteResponse reports how many appointments went with the user.
type DeleteResponse struct {
	ID                  string `json:"id"`
	DeletedAppointments int64  `json:"deletedAppointments"`
}

func (h *AdminHandler) deleteOwner(c *gin.Context, id string, role models.Role, notFoundMsg, message string) {
	actor, _ := middleware.GetUserIDFromContext(c)
	removed, err := h.Lifecycle.CascadeDeleteOwner(c.Request.Context(), id, role, actor)
	if err != nil {
		utils.RespondError(c, err, notFoundMsg)
		return
	}
	utils.Success(c, message, DeleteResponse{ID: id, DeletedAppointments: removed})
}

// GetAllAppointments lists every appointment with its participants, newest first.
func (h *AdminHandler) GetAllAppointments(c *gin.Context) {
	appointments, err := h.Store.Appointments.ListWithParticipants(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentHistory returns the audit events of one appointment.
func (h *AdminHandler) GetAppointmentHistory(c *gin.Context) {
	if h.History == nil {
		utils.Error(c, http.StatusNotImplemented, "Audit history is not configured")
		return
	}
	events, err := h.History.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNoHistory) {
			utils.Error(c, http.StatusNotImplemented, "Audit history is not configured")
			return
		}
		utils.RespondError(c, err, "")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	utils.Success(c, "Appointment history fetched successfully", events)
}
