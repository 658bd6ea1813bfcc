package handlers

import (
	"errors"
	"net/http"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/services"
	"feedpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// LoginUser handles user login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "LoginUser: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	authResp, err := h.authService.LoginUser(req)
	if err != nil {
		utils.LogError(err, "LoginUser: Error from authService.LoginUser")
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to login.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserProfile(userID)
	if err != nil {
		utils.LogError(err, "GetCurrentUser: Error from authService.GetUserProfile for userID "+utils.Int64ToStr(userID))
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User profile not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve user profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ChangePasswordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ChangePassword: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.authService.ChangePassword(userID, req); err != nil {
		utils.LogError(err, "ChangePassword: Error from authService.ChangePassword")
		if errors.Is(err, services.ErrPasswordMismatch) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Current password does not match.", err.Error()))
		} else if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to change password.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}

// LogoutUser handles user logout. For stateless JWT this is a client-side
// action; the server only acknowledges.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}

// CreateCashier registers a new cashier account (admin only).
func (h *AuthHandler) CreateCashier(c *gin.Context) {
	var req models.CreateCashierPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCashier: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	user, err := h.authService.CreateCashier(req)
	if err != nil {
		utils.LogError(err, "CreateCashier: Error from authService.CreateCashier")
		if errors.Is(err, services.ErrUsernameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username already exists.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create cashier.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers returns a paginated user list (admin only).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, pageSize := pagination(c)

	users, totalCount, err := h.authService.ListUsers(page, pageSize)
	if err != nil {
		utils.LogError(err, "ListUsers: Error from authService.ListUsers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list users.", "Internal error"))
		return
	}
	paginatedResponse(c, users, totalCount, page, pageSize)
}

// SetUserStatus activates or deactivates an account (admin only).
func (h *AuthHandler) SetUserStatus(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UserStatusPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: is_active is required.", "is_active must be provided"))
		return
	}

	user, err := h.authService.SetUserStatus(userID, *req.IsActive)
	if err != nil {
		utils.LogError(err, "SetUserStatus: Error from authService.SetUserStatus for userID "+utils.Int64ToStr(userID))
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update user status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, user)
}
