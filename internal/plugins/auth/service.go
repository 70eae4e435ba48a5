package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/token"
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repositories directly.
type AuthService interface {
	RegisterStudent(ctx context.Context, input RegisterStudentRequest) (*AuthResult, error)
	RegisterAdmin(ctx context.Context, input RegisterAdminRequest) (*AuthResult, error)
	Login(ctx context.Context, input LoginRequest, meta SessionMeta) (*AuthResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string, meta SessionMeta) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	LogoutAll(ctx context.Context, userID string) (bool, error)

	// ExternalLogin is a placeholder for providers beyond Google. It always
	// returns a not_implemented error -- a design decision, not a failure.
	ExternalLogin(ctx context.Context, provider string) (*AuthResult, error)

	// DeleteAccount removes a user together with its profile and sessions.
	DeleteAccount(ctx context.Context, userID string) error
}

// authService implements AuthService with argon2id hashing, JWT access
// tokens, and rotating refresh tokens persisted as hashes.
type authService struct {
	users    UserRepository
	sessions SessionRepository
	issuer   *token.Issuer

	refreshTTL      time.Duration
	maxFailures     int
	lockoutDuration time.Duration
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(users UserRepository, sessions SessionRepository, issuer *token.Issuer,
	refreshTTL time.Duration, maxFailures int, lockoutDuration time.Duration) AuthService {
	return &authService{
		users:           users,
		sessions:        sessions,
		issuer:          issuer,
		refreshTTL:      refreshTTL,
		maxFailures:     maxFailures,
		lockoutDuration: lockoutDuration,
	}
}

// normalizeEmail lowercases and trims an email address. Uniqueness is
// case-insensitive, so every lookup and insert goes through this.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration checks the fields shared by both registration flows.
func validateRegistration(email, firstName, lastName, password string) []string {
	var reasons []string
	if email == "" {
		reasons = append(reasons, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		reasons = append(reasons, "email is not a valid address")
	}
	if strings.TrimSpace(firstName) == "" {
		reasons = append(reasons, "first name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		reasons = append(reasons, "last name is required")
	}
	reasons = append(reasons, validatePassword(password)...)
	return reasons
}

// register is the shared registration path. createFn performs the
// role-specific atomic user+profile insert.
func (s *authService) register(ctx context.Context, email, firstName, lastName, password, role string,
	createFn func(ctx context.Context, user *User) error, meta SessionMeta) (*AuthResult, error) {

	email = normalizeEmail(email)
	if reasons := validateRegistration(email, firstName, lastName, password); len(reasons) > 0 {
		return nil, apperror.NewValidation("registration request is invalid", reasons...)
	}

	// Check for duplicates before doing expensive hashing.
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: &hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := createFn(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return s.issuePair(ctx, user, meta)
}

// RegisterStudent creates a student account with its profile and returns a
// fresh token pair.
func (s *authService) RegisterStudent(ctx context.Context, input RegisterStudentRequest) (*AuthResult, error) {
	return s.register(ctx, input.Email, input.FirstName, input.LastName, input.Password, RoleStudent,
		func(ctx context.Context, user *User) error {
			profile := &StudentProfile{UserID: user.ID, City: input.City, CreatedAt: user.CreatedAt}
			return s.users.CreateStudent(ctx, user, profile)
		}, SessionMeta{})
}

// RegisterAdmin creates an admin account with its profile and returns a
// fresh token pair.
func (s *authService) RegisterAdmin(ctx context.Context, input RegisterAdminRequest) (*AuthResult, error) {
	return s.register(ctx, input.Email, input.FirstName, input.LastName, input.Password, RoleAdmin,
		func(ctx context.Context, user *User) error {
			profile := &AdminProfile{UserID: user.ID, Department: input.Department, CreatedAt: user.CreatedAt}
			return s.users.CreateAdmin(ctx, user, profile)
		}, SessionMeta{})
}

// errInvalidCredentials is the uniform login failure. Unknown email, wrong
// password, and inactive account all look identical to the caller so the
// endpoint cannot be used for account enumeration.
func errInvalidCredentials() error {
	return apperror.NewUnauthorized("invalid email or password")
}

// Login authenticates by email and password, enforcing the lockout policy.
func (s *authService) Login(ctx context.Context, input LoginRequest, meta SessionMeta) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !user.IsActive {
		return nil, errInvalidCredentials()
	}

	now := time.Now().UTC()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, apperror.NewAccountLocked("account temporarily locked after repeated failed logins")
	}

	if user.PasswordHash == nil || !verifyPassword(input.Password, *user.PasswordHash) {
		failures := user.FailedLogins + 1
		var lockedUntil *time.Time
		if failures >= s.maxFailures {
			until := now.Add(s.lockoutDuration)
			lockedUntil = &until
			slog.Warn("account locked after repeated failures",
				slog.String("user_id", user.ID),
				slog.Int("failures", failures),
			)
		}
		if err := s.users.RecordLoginFailure(ctx, user.ID, failures, lockedUntil); err != nil {
			slog.Warn("failed to record login failure",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
		return nil, errInvalidCredentials()
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		// Non-critical: the login still succeeds.
		slog.Warn("failed to record login success",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return s.issuePair(ctx, user, meta)
}

// Refresh rotates a session: recovers the subject from the (possibly
// expired) access token, rotates the presented refresh token, and issues a
// new pair. The subject must match the session's owner -- presenting user
// A's access token with user B's refresh token fails even though both are
// individually authentic.
func (s *authService) Refresh(ctx context.Context, accessToken, refreshToken string, meta SessionMeta) (*AuthResult, error) {
	claims, ok := s.issuer.ParseIgnoringExpiry(accessToken)
	if !ok {
		return nil, apperror.NewUnauthorized("invalid token pair")
	}

	newRaw, err := token.NewRefreshToken()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating refresh token: %w", err))
	}

	presentedHash := token.HashToken(refreshToken)
	newHash := token.HashToken(newRaw)
	newExpiry := time.Now().UTC().Add(s.refreshTTL)

	userID, err := s.sessions.Rotate(ctx, presentedHash, newHash, newExpiry, meta)
	if err != nil {
		return nil, err
	}

	if claims.Subject != userID {
		// Mix-and-match attempt. The rotation already burned the presented
		// token; also burn its replacement so nothing live comes out of this.
		if _, revokeErr := s.sessions.Revoke(ctx, newHash); revokeErr != nil {
			slog.Warn("failed to revoke orphaned session", slog.Any("error", revokeErr))
		}
		slog.Warn("refresh subject mismatch",
			slog.String("token_subject", claims.Subject),
			slog.String("session_user", userID),
		)
		return nil, apperror.NewUnauthorized("invalid token pair")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NewUnauthorized("invalid token pair")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	if !user.IsActive {
		return nil, apperror.NewUnauthorized("account is inactive")
	}

	access, err := s.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("issuing access token: %w", err))
	}

	return &AuthResult{User: user, AccessToken: access, RefreshToken: newRaw}, nil
}

// Logout revokes the session matching the presented refresh token.
// Returns whether a matching active record existed.
func (s *authService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	revoked, err := s.sessions.Revoke(ctx, token.HashToken(refreshToken))
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("revoking session: %w", err))
	}
	return revoked, nil
}

// LogoutAll revokes every active session for the user. Returns whether any
// record was active.
func (s *authService) LogoutAll(ctx context.Context, userID string) (bool, error) {
	n, err := s.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("revoking sessions: %w", err))
	}
	if n > 0 {
		slog.Info("all sessions revoked",
			slog.String("user_id", userID),
			slog.Int64("count", n),
		)
	}
	return n > 0, nil
}

// ExternalLogin is deliberately unimplemented for providers other than
// Google (which has its own flow in GoogleService).
func (s *authService) ExternalLogin(ctx context.Context, provider string) (*AuthResult, error) {
	return nil, apperror.NewNotImplemented("external login with provider " + provider + " is not implemented")
}

// DeleteAccount removes the user, its profile, and its sessions.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting user: %w", err))
	}
	slog.Info("account deleted", slog.String("user_id", userID))
	return nil
}

// subjectOf maps a user to the claim bundle stamped on access tokens.
func subjectOf(user *User) token.Subject {
	return token.Subject{
		ID:         user.ID,
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		Role:       user.Role,
	}
}

// issuePair issues an access token and a refresh token for the user and
// persists the refresh token's hash as a new session record.
func (s *authService) issuePair(ctx context.Context, user *User, meta SessionMeta) (*AuthResult, error) {
	access, err := s.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("issuing access token: %w", err))
	}

	raw, err := token.NewRefreshToken()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating refresh token: %w", err))
	}

	record := &SessionRecord{
		UserID:    user.ID,
		TokenHash: token.HashToken(raw),
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
		CreatedAt: time.Now().UTC(),
	}
	if meta.UserAgent != "" {
		record.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		record.IP = &meta.IP
	}

	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	return &AuthResult{User: user, AccessToken: access, RefreshToken: raw}, nil
}
