package handlers

import (
	"time"

	"clinic-appointments-server/internal/lifecycle"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/store"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment-related requests.
type AppointmentHandler struct {
	Store     *store.Store
	Lifecycle *lifecycle.Service
	Now       func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(st *store.Store, lc *lifecycle.Service) *AppointmentHandler {
	return &AppointmentHandler{Store: st, Lifecycle: lc, Now: time.Now}
}

// caller returns the authenticated user's id and role.
func caller(c *gin.Context) (string, models.Role, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return "", "", false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	return id, role, ok
}

// canAccess reports whether the caller may see or act on a.
func canAccess(a *models.Appointment, userID string, role models.Role) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return a.PatientID == userID
	case models.RoleDoctor:
		return a.DoctorID == userID
	}
	return false
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID  string                   `json:"doctorId" binding:"required"`
	PatientID string                   `json:"patientId"`
	Date      models.Timestamp         `json:"date"`
	Status    models.AppointmentStatus `json:"status" binding:"omitempty,oneof=pending booked"`
}

// CreateAppointment books an appointment. Patients book for themselves;
// admins book on behalf of the patient named in the body.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID := req.PatientID
	switch role {
	case models.RolePatient:
		if patientID != "" && patientID != userID {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
		patientID = userID
	case models.RoleAdmin:
		if patientID == "" {
			utils.BadRequest(c, "Validation failed: patientId is required")
			return
		}
	default:
		utils.Forbidden(c, "Only patients and admins can book appointments.")
		return
	}

	a, err := h.Lifecycle.Book(c.Request.Context(), lifecycle.BookRequest{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Status:    req.Status,
		Actor:     userID,
	})
	if err != nil {
		utils.RespondError(c, err, "Doctor or patient not found")
		return
	}
	utils.Created(c, "Appointment created successfully", a)
}

// GetPatientAppointments lists a patient's appointments. Patients see only
// their own.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	h.listFor(c, models.RolePatient, store.AppointmentFilter{PatientID: c.Param("id")})
}

// GetDoctorAppointments lists a doctor's appointments. Doctors see only
// their own.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	h.listFor(c, models.RoleDoctor, store.AppointmentFilter{DoctorID: c.Param("id")})
}

func (h *AppointmentHandler) listFor(c *gin.Context, owner models.Role, f store.AppointmentFilter) {
	userID, role, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	ownerID := f.PatientID + f.DoctorID
	if role != models.RoleAdmin && (role != owner || ownerID != userID) {
		utils.Forbidden(c, "You do not have permission to view these appointments.")
		return
	}

	appointments, err := h.Store.Appointments.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetSummary tallies the caller's appointments into upcoming, completed and
// pending billing. Admins get the tally over every appointment.
func (h *AppointmentHandler) GetSummary(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var f store.AppointmentFilter
	switch role {
	case models.RolePatient:
		f.PatientID = userID
	case models.RoleDoctor:
		f.DoctorID = userID
	}
	appointments, err := h.Store.Appointments.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err, "")
		return
	}
	utils.Success(c, "Appointment summary fetched successfully", lifecycle.CountByClassification(appointments, h.Now()))
}

// GetAppointmentByID returns one appointment to its participants or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	a, err := h.Store.Appointments.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Appointment not found")
		return
	}
	if !canAccess(a, userID, role) {
		utils.Forbidden(c, "You do not have permission to view this appointment.")
		return
	}
	utils.Success(c, "Appointment fetched successfully", a)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus changes an appointment's status. The doctor and
// admins may set any status; the patient may only cancel.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	a, err := h.Store.Appointments.FindByID(ctx, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Appointment not found")
		return
	}
	if !canAccess(a, userID, role) {
		utils.Forbidden(c, "You do not have permission to update this appointment.")
		return
	}
	if role == models.RolePatient && req.Status != models.StatusCancelled {
		utils.Forbidden(c, "Patients can only cancel appointments.")
		return
	}

	updated, err := h.Lifecycle.Transition(ctx, a.ID, req.Status, userID)
	if err != nil {
		utils.RespondError(c, err, "Appointment not found")
		return
	}
	utils.Success(c, "Appointment status updated successfully", updated)
}

// FeedbackRequest carries free-form feedback, e.g. a rating and a comment.
type FeedbackRequest struct {
	Feedback map[string]interface{} `json:"feedback" binding:"required"`
}

// SubmitFeedback attaches the patient's feedback to a completed appointment.
func (h *AppointmentHandler) SubmitFeedback(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req FeedbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	a, err := h.Lifecycle.SubmitFeedback(c.Request.Context(), c.Param("id"), userID, req.Feedback)
	if err != nil {
		utils.RespondError(c, err, "Appointment not found")
		return
	}
	utils.Success(c, "Feedback submitted successfully", a)
}
