package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eduseek/eduseek/internal/apperror"
)

// UserRepository defines the data access contract for user accounts.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type UserRepository interface {
	// CreateStudent inserts the user and its student profile in one
	// transaction: both rows exist or neither does.
	CreateStudent(ctx context.Context, user *User, profile *StudentProfile) error

	// CreateAdmin inserts the user and its admin profile in one transaction.
	CreateAdmin(ctx context.Context, user *User, profile *AdminProfile) error

	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// RecordLoginFailure persists the updated failure counter and, when the
	// lockout threshold was crossed, the cooldown deadline.
	RecordLoginFailure(ctx context.Context, id string, failures int, lockedUntil *time.Time) error

	// RecordLoginSuccess resets the failure counter and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, id string) error

	// SetEmailConfirmed updates the email_confirmed flag.
	SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error

	// Delete removes the user, its profile, and its sessions in one
	// transaction. The cascade is deliberate application-level behavior,
	// not a storage-engine side effect.
	Delete(ctx context.Context, id string) error
}

// SessionRepository defines the data access contract for refresh-token
// session records.
type SessionRepository interface {
	Create(ctx context.Context, record *SessionRecord) error

	// Rotate atomically revokes the record matching presentedHash and
	// inserts a replacement with newHash for the same user. The revocation
	// is a single conditional update, so of two concurrent rotations on the
	// same presented token exactly one succeeds; the loser gets an
	// unauthorized error. Returns the record's user id.
	Rotate(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error)

	// Revoke marks one record revoked. Returns false if no record matched.
	Revoke(ctx context.Context, tokenHash string) (bool, error)

	// RevokeAll marks every active record for the user revoked and returns
	// how many were affected.
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// --- MariaDB implementations ---

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, role,
	is_active, email_confirmed, failed_logins, locked_until,
	created_at, updated_at, last_login_at`

// scanUser reads one user row in userColumns order.
func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.EmailConfirmed,
		&user.FailedLogins,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return user, nil
}

// insertUser writes the user row inside an open transaction.
func insertUser(ctx context.Context, tx *sql.Tx, user *User) error {
	query := `INSERT INTO users (id, email, first_name, last_name, password_hash, role,
	                             is_active, email_confirmed, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.EmailConfirmed,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// CreateStudent inserts the user and student profile rows transactionally.
func (r *userRepository) CreateStudent(ctx context.Context, user *User, profile *StudentProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}

	query := `INSERT INTO student_profiles (user_id, city, created_at) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, profile.UserID, profile.City, profile.CreatedAt); err != nil {
		return fmt.Errorf("inserting student profile: %w", err)
	}

	return tx.Commit()
}

// CreateAdmin inserts the user and admin profile rows transactionally.
func (r *userRepository) CreateAdmin(ctx context.Context, user *User, profile *AdminProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}

	query := `INSERT INTO admin_profiles (user_id, department, created_at) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, profile.UserID, profile.Department, profile.CreatedAt); err != nil {
		return fmt.Errorf("inserting admin profile: %w", err)
	}

	return tx.Commit()
}

// FindByID retrieves a user by their UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail retrieves a user by email. Emails are stored lowercase, so
// callers must normalize before querying.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// EmailExists returns true if a user with the given email already exists.
// Used during registration to check for duplicates before hashing the password.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// RecordLoginFailure persists the failure counter and optional lockout deadline.
func (r *userRepository) RecordLoginFailure(ctx context.Context, id string, failures int, lockedUntil *time.Time) error {
	query := `UPDATE users SET failed_logins = ?, locked_until = ?, updated_at = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, failures, lockedUntil, id); err != nil {
		return fmt.Errorf("recording login failure: %w", err)
	}
	return nil
}

// RecordLoginSuccess clears the failure state and stamps last_login_at.
func (r *userRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	query := `UPDATE users SET failed_logins = 0, locked_until = NULL,
	          last_login_at = NOW(), updated_at = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("recording login success: %w", err)
	}
	return nil
}

// SetEmailConfirmed updates the email_confirmed flag.
func (r *userRepository) SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error {
	query := `UPDATE users SET email_confirmed = ?, updated_at = NOW() WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, confirmed, id)
	if err != nil {
		return fmt.Errorf("updating email_confirmed: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// Delete removes the user, its profile rows, and its sessions in one
// transaction. The FK constraints would cascade anyway; doing it here keeps
// the deletion contract visible in application code.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM refresh_tokens WHERE user_id = ?`,
		`DELETE FROM student_profiles WHERE user_id = ?`,
		`DELETE FROM admin_profiles WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("cascading user delete: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return tx.Commit()
}

// sessionRepository implements SessionRepository against the refresh_tokens table.
type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a session repository backed by the given DB pool.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new active session record.
func (r *sessionRepository) Create(ctx context.Context, record *SessionRecord) error {
	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked, user_agent, ip, created_at)
	          VALUES (?, ?, ?, 0, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		record.UserID,
		record.TokenHash,
		record.ExpiresAt,
		record.UserAgent,
		record.IP,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session record: %w", err)
	}
	record.ID, _ = result.LastInsertId()
	return nil
}

// Rotate revokes the presented record and inserts its replacement in one
// transaction. The revocation is a compare-and-set on the revoked flag:
// two concurrent rotations on the same token cannot both pass it, which is
// what turns a replayed refresh token into a hard failure instead of a
// second live session.
func (r *sessionRepository) Rotate(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	var (
		userID    string
		expiresAt time.Time
		revoked   bool
	)
	query := `SELECT user_id, expires_at, revoked FROM refresh_tokens WHERE token_hash = ?`
	err = tx.QueryRowContext(ctx, query, presentedHash).Scan(&userID, &expiresAt, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.NewUnauthorized("invalid refresh token")
	}
	if err != nil {
		return "", fmt.Errorf("looking up session record: %w", err)
	}
	if revoked {
		return "", apperror.NewUnauthorized("refresh token has been revoked")
	}
	if time.Now().UTC().After(expiresAt) {
		return "", apperror.NewUnauthorized("refresh token has expired")
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ? AND revoked = 0`,
		presentedHash,
	)
	if err != nil {
		return "", fmt.Errorf("revoking session record: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// A concurrent rotation won the compare-and-set.
		return "", apperror.NewUnauthorized("refresh token has been revoked")
	}

	insert := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked, user_agent, ip, created_at)
	           VALUES (?, ?, ?, 0, ?, ?, ?)`
	var userAgent, ip *string
	if meta.UserAgent != "" {
		userAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		ip = &meta.IP
	}
	if _, err := tx.ExecContext(ctx, insert, userID, newHash, newExpiry, userAgent, ip, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("inserting rotated session record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing rotation: %w", err)
	}
	return userID, nil
}

// Revoke marks one record revoked by hash. Returns false if nothing matched.
func (r *sessionRepository) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ? AND revoked = 0`
	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("revoking session record: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// RevokeAll marks every active record for a user revoked.
func (r *sessionRepository) RevokeAll(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("revoking all session records: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
