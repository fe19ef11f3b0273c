package handlers

import (
	"errors"
	"strings"

	"clinic-appointments-server/internal/config"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/store"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Store *store.Store
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st *store.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Store: st, Cfg: cfg}
}

// UserRequest is the body used to create a user, either by self-registration
// or by an admin.
type UserRequest struct {
	Username       string      `json:"username" binding:"required,min=3,max=100"`
	Password       string      `json:"password" binding:"required,min=6"`
	Name           string      `json:"name" binding:"required"`
	Email          string      `json:"email" binding:"omitempty,email"`
	Phone          string      `json:"phone"`
	Specialization string      `json:"specialization"`
	Experience     int         `json:"experience" binding:"min=0"`
	Role           models.Role `json:"role"`
}

// toUser builds the user to insert with the given role. Doctor-only fields
// are dropped for other roles.
func (r *UserRequest) toUser(role models.Role) (*models.User, error) {
	u := &models.User{
		Username: strings.TrimSpace(r.Username),
		Name:     r.Name,
		Phone:    r.Phone,
		Role:     role,
	}
	if email := strings.TrimSpace(r.Email); email != "" {
		u.Email = &email
	}
	if role == models.RoleDoctor {
		if r.Specialization != "" {
			spec := r.Specialization
			u.Specialization = &spec
		}
		u.Experience = r.Experience
	}
	if err := u.SetPassword(r.Password); err != nil {
		return nil, err
	}
	return u, nil
}

// createUser inserts the user described by req and writes the response.
func createUser(c *gin.Context, st *store.Store, req *UserRequest, role models.Role, message string) {
	user, err := req.toUser(role)
	if err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}
	if err := st.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			switch {
			case strings.HasPrefix(err.Error(), "username"):
				utils.Conflict(c, "Username already exists")
			case strings.HasPrefix(err.Error(), "email"):
				utils.Conflict(c, "Email already exists")
			default:
				utils.Conflict(c, "User already exists")
			}
			return
		}
		utils.RespondError(c, err, "")
		return
	}
	utils.Created(c, message, user.Sanitize())
}

// Register handles patient self-registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req UserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	createUser(c, h.Store, &req, models.RolePatient, "User registered successfully")
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	Token string               `json:"token"`
	User  models.UserSanitized `json:"user"`
}

// Login handles login for any role.
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, "")
}

// AdminLogin handles login restricted to admin accounts.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, models.RoleAdmin)
}

func (h *AuthHandler) login(c *gin.Context, role models.Role) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Store.Users.FindByUsername(c.Request.Context(), req.Username, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Unauthorized(c, "Invalid username or password")
		} else {
			utils.RespondError(c, err, "")
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token")
		return
	}

	utils.Success(c, "Login successful", LoginResponse{
		Token: token,
		User:  user.Sanitize(),
	})
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Store.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err, "User not found")
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}
