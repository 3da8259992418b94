package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/octostats/octostats/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, username, encrypted_pat, session_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID.String(),
		user.Username,
		user.EncryptedPAT,
		user.SessionToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT id, username, encrypted_pat, session_token, created_at, updated_at FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRow(query, username))
}

// GetBySessionToken retrieves a user by the session token last issued for it
func (r *UserRepository) GetBySessionToken(token string) (*models.User, error) {
	query := `SELECT id, username, encrypted_pat, session_token, created_at, updated_at FROM users WHERE session_token = ?`
	return r.scanUser(r.db.QueryRow(query, token))
}

// Update updates a user's credential and session token
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET encrypted_pat = ?, session_token = ?, updated_at = ?
		WHERE id = ?
	`

	user.UpdatedAt = time.Now()
	_, err := r.db.Exec(query,
		user.EncryptedPAT,
		user.SessionToken,
		user.UpdatedAt,
		user.ID.String(),
	)
	return err
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var userID string
	err := row.Scan(
		&userID,
		&user.Username,
		&user.EncryptedPAT,
		&user.SessionToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
