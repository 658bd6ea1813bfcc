package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedpos_backend/internal/models"

	"github.com/lib/pq"
)

// AuthRepository defines the interface for user-related database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, passwordHash string) (int64, error)
	FindUserByUsername(username string) (*models.User, string, error) // returns user, stored password hash
	FindUserByID(id int64) (*models.User, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	UpdateUserStatus(executor SQLExecutor, id int64, isActive bool) error
	UpdatePasswordHash(executor SQLExecutor, id int64, passwordHash string) error
	GetPasswordHash(id int64) (string, error)
	CountUsers() (int, error)
}

type authRepository struct {
	db DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, passwordHash string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, full_name, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		user.Username, passwordHash, user.FullName, user.Role, user.IsActive, currentTime, currentTime,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: username '%s' already exists (constraint: %s)", ErrDuplicateKey, user.Username, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	user := &models.User{}
	var passwordHash string
	query := `SELECT id, username, password_hash, full_name, role, is_active, created_at, updated_at
	          FROM users WHERE username = $1`
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &passwordHash, &user.FullName, &user.Role,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, passwordHash, nil
}

func (r *authRepository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, full_name, role, is_active, created_at, updated_at
	          FROM users WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.FullName, &user.Role,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

func (r *authRepository) GetUsers(page, pageSize int) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0
	query := `SELECT id, username, full_name, role, is_active, created_at, updated_at, COUNT(*) OVER() AS total_count
	          FROM users
	          ORDER BY username
	          LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.FullName, &user.Role,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

func (r *authRepository) UpdateUserStatus(executor SQLExecutor, id int64, isActive bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, isActive, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status for user ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authRepository) UpdatePasswordHash(executor SQLExecutor, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating password for user ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authRepository) GetPasswordHash(id int64) (string, error) {
	var passwordHash string
	err := r.db.QueryRow(`SELECT password_hash FROM users WHERE id = $1`, id).Scan(&passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting password hash for user ID %d: %v", ErrDatabaseError, id, err)
	}
	return passwordHash, nil
}

func (r *authRepository) CountUsers() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return count, nil
}
