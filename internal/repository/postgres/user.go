package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/repository"
)

const userColumns = `id, username, email, phone, password_hash, can_offer_rides, can_find_rides,
	rides_taken, verified, verify_token, token_expires_at, last_login_at, created_at`

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// Create persists a new user, mapping unique-constraint violations to the
// typed duplicate errors.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, phone, password_hash, can_offer_rides, can_find_rides,
			rides_taken, verified, verify_token, token_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var phone sql.NullString
	if user.Phone != "" {
		phone = sql.NullString{String: user.Phone, Valid: true}
	}

	var token sql.NullString
	if user.VerifyToken != "" {
		token = sql.NullString{String: user.VerifyToken, Valid: true}
	}

	var expiresAt sql.NullTime
	if !user.TokenExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: user.TokenExpiresAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		phone,
		user.PasswordHash,
		user.CanOfferRides,
		user.CanFindRides,
		user.RidesTaken,
		user.Verified,
		token,
		expiresAt,
		user.CreatedAt,
	)

	return mapUniqueViolation(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByToken retrieves a user by verification token.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE verify_token = $1`, token)
}

// SetVerification updates the verified flag, token and expiry together.
func (r *UserRepository) SetVerification(ctx context.Context, id string, verified bool, token string, expiresAt time.Time) error {
	query := `UPDATE users SET verified = $1, verify_token = $2, token_expires_at = $3 WHERE id = $4`

	var tok sql.NullString
	if token != "" {
		tok = sql.NullString{String: token, Valid: true}
	}

	var exp sql.NullTime
	if !expiresAt.IsZero() {
		exp = sql.NullTime{Time: expiresAt, Valid: true}
	}

	return r.execOne(ctx, query, verified, tok, exp, id)
}

// SetCapabilities updates the two capability flags.
func (r *UserRepository) SetCapabilities(ctx context.Context, id string, canOffer, canFind bool) error {
	query := `UPDATE users SET can_offer_rides = $1, can_find_rides = $2 WHERE id = $3`
	return r.execOne(ctx, query, canOffer, canFind, id)
}

// RecordLogin sets the last-login timestamp.
func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
}

// IncrementRidesTaken adds seats to the user's running booking counter.
func (r *UserRepository) IncrementRidesTaken(ctx context.Context, id string, seats int) error {
	return r.execOne(ctx, `UPDATE users SET rides_taken = rides_taken + $1 WHERE id = $2`, seats, id)
}

// Delete removes the user row.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	var phone, token sql.NullString
	var expiresAt, lastLogin sql.NullTime

	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&phone,
		&user.PasswordHash,
		&user.CanOfferRides,
		&user.CanFindRides,
		&user.RidesTaken,
		&user.Verified,
		&token,
		&expiresAt,
		&lastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		user.Phone = phone.String
	}
	if token.Valid {
		user.VerifyToken = token.String
	}
	if expiresAt.Valid {
		user.TokenExpiresAt = expiresAt.Time
	}
	if lastLogin.Valid {
		user.LastLoginAt = lastLogin.Time
	}

	return &user, nil
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// mapUniqueViolation translates PostgreSQL unique-constraint violations
// (class 23505) into the repository's typed duplicate errors. Uniqueness is
// ultimately enforced here, so two racing registrations cannot both win.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch pqErr.Constraint {
	case "users_username_key":
		return repository.ErrDuplicateUsername
	case "users_email_key":
		return repository.ErrDuplicateEmail
	case "users_phone_key":
		return repository.ErrDuplicatePhone
	}
	return err
}
