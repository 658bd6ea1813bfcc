package services

import (
	"errors"
	"fmt"

	"feedpos_backend/internal/models"
	"feedpos_backend/internal/repositories"
	"feedpos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrPasswordMismatch   = errors.New("current password does not match")
)

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// --- AuthService Interface ---
type AuthService interface {
	LoginUser(req models.Credentials) (*AuthResponse, error)
	ChangePassword(userID int64, req models.ChangePasswordPayload) error
	GetUserProfile(userID int64) (*models.User, error)
	CreateCashier(req models.CreateCashierPayload) (*models.User, error)
	ListUsers(page, pageSize int) ([]models.User, int, error)
	SetUserStatus(userID int64, isActive bool) (*models.User, error)
	EnsureAdminUser(username, fullName, password string) error
}

// --- authService Implementation ---
type authService struct {
	authRepo repositories.AuthRepository
	db       repositories.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, db repositories.DB) AuthService {
	return &authService{
		authRepo: authRepo,
		db:       db,
	}
}

// LoginUser handles user login and token generation. Unknown users, wrong
// passwords and deactivated accounts all surface the same error so the
// endpoint cannot be used to enumerate accounts.
func (s *authService) LoginUser(req models.Credentials) (*AuthResponse, error) {
	user, storedHashedPassword, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(storedHashedPassword), []byte(req.Password))
	if err != nil {
		// err is bcrypt.ErrMismatchedHashAndPassword for wrong password
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
	}, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *authService) ChangePassword(userID int64, req models.ChangePasswordPayload) error {
	storedHash, err := s.authRepo.GetPasswordHash(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to fetch current password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.CurrentPassword)); err != nil {
		return ErrPasswordMismatch
	}

	newHashBytes, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.authRepo.UpdatePasswordHash(s.db, userID, string(newHashBytes)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// CreateCashier registers a new cashier account. Only reachable through the
// admin route group.
func (s *authService) CreateCashier(req models.CreateCashierPayload) (*models.User, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: req.Username,
		FullName: req.FullName,
		Role:     models.RoleCashier,
		IsActive: true,
	}

	createdUserID, err := s.authRepo.CreateUser(s.db, &user, string(hashedPasswordBytes))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create cashier: %w", err)
	}

	createdUser, fetchErr := s.authRepo.FindUserByID(createdUserID)
	if fetchErr != nil {
		user.ID = createdUserID
		user.PasswordHash = ""
		return &user, fmt.Errorf("cashier created but failed to retrieve full details: %w", fetchErr)
	}
	createdUser.PasswordHash = ""
	return createdUser, nil
}

func (s *authService) ListUsers(page, pageSize int) ([]models.User, int, error) {
	users, totalCount, err := s.authRepo.GetUsers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, totalCount, nil
}

// SetUserStatus activates or deactivates an account. Users are never
// deleted: historical sales reference them as actors.
func (s *authService) SetUserStatus(userID int64, isActive bool) (*models.User, error) {
	if err := s.authRepo.UpdateUserStatus(s.db, userID, isActive); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return s.GetUserProfile(userID)
}

// EnsureAdminUser bootstraps the first admin account on an empty users
// table so a fresh deployment can be logged into.
func (s *authService) EnsureAdminUser(username, fullName, password string) error {
	count, err := s.authRepo.CountUsers()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	admin := models.User{
		Username: username,
		FullName: fullName,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if _, err := s.authRepo.CreateUser(s.db, &admin, string(hashedPasswordBytes)); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	utils.LogInfo("Bootstrap admin user created", map[string]interface{}{"username": username})
	return nil
}
