package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/token"
)

// --- Mock Repositories ---

// mockUserRepo implements UserRepository for testing.
type mockUserRepo struct {
	createStudentFn      func(ctx context.Context, user *User, profile *StudentProfile) error
	createAdminFn        func(ctx context.Context, user *User, profile *AdminProfile) error
	findByIDFn           func(ctx context.Context, id string) (*User, error)
	findByEmailFn        func(ctx context.Context, email string) (*User, error)
	emailExistsFn        func(ctx context.Context, email string) (bool, error)
	recordLoginFailureFn func(ctx context.Context, id string, failures int, lockedUntil *time.Time) error
	recordLoginSuccessFn func(ctx context.Context, id string) error
	setEmailConfirmedFn  func(ctx context.Context, id string, confirmed bool) error
	deleteFn             func(ctx context.Context, id string) error
}

func (m *mockUserRepo) CreateStudent(ctx context.Context, user *User, profile *StudentProfile) error {
	if m.createStudentFn != nil {
		return m.createStudentFn(ctx, user, profile)
	}
	return nil
}

func (m *mockUserRepo) CreateAdmin(ctx context.Context, user *User, profile *AdminProfile) error {
	if m.createAdminFn != nil {
		return m.createAdminFn(ctx, user, profile)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) RecordLoginFailure(ctx context.Context, id string, failures int, lockedUntil *time.Time) error {
	if m.recordLoginFailureFn != nil {
		return m.recordLoginFailureFn(ctx, id, failures, lockedUntil)
	}
	return nil
}

func (m *mockUserRepo) RecordLoginSuccess(ctx context.Context, id string) error {
	if m.recordLoginSuccessFn != nil {
		return m.recordLoginSuccessFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) SetEmailConfirmed(ctx context.Context, id string, confirmed bool) error {
	if m.setEmailConfirmedFn != nil {
		return m.setEmailConfirmedFn(ctx, id, confirmed)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockSessionRepo implements SessionRepository for testing.
type mockSessionRepo struct {
	createFn    func(ctx context.Context, record *SessionRecord) error
	rotateFn    func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error)
	revokeFn    func(ctx context.Context, tokenHash string) (bool, error)
	revokeAllFn func(ctx context.Context, userID string) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, record *SessionRecord) error {
	if m.createFn != nil {
		return m.createFn(ctx, record)
	}
	return nil
}

func (m *mockSessionRepo) Rotate(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
	if m.rotateFn != nil {
		return m.rotateFn(ctx, presentedHash, newHash, newExpiry, meta)
	}
	return "", apperror.NewUnauthorized("invalid refresh token")
}

func (m *mockSessionRepo) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, tokenHash)
	}
	return false, nil
}

func (m *mockSessionRepo) RevokeAll(ctx context.Context, userID string) (int64, error) {
	if m.revokeAllFn != nil {
		return m.revokeAllFn(ctx, userID)
	}
	return 0, nil
}

// --- Test Helpers ---

func testIssuer(t *testing.T, ttl time.Duration) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer("test-secret-not-for-production-use", "eduseek", "eduseek-api", ttl)
	if err != nil {
		t.Fatalf("creating issuer: %v", err)
	}
	return issuer
}

func newTestAuthService(t *testing.T, users *mockUserRepo, sessions *mockSessionRepo) *authService {
	t.Helper()
	return &authService{
		users:           users,
		sessions:        sessions,
		issuer:          testIssuer(t, 15*time.Minute),
		refreshTTL:      30 * 24 * time.Hour,
		maxFailures:     5,
		lockoutDuration: 15 * time.Minute,
	}
}

// assertKind checks that err is an *apperror.AppError of the expected kind.
func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Errorf("expected kind %s, got %s (message: %s)", kind, appErr.Kind, appErr.Message)
	}
}

func activeUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	now := time.Now().UTC()
	return &User{
		ID:           "user-123",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Nguyen",
		PasswordHash: &hash,
		Role:         RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Registration Tests ---

func TestRegisterStudent_Success(t *testing.T) {
	var capturedUser *User
	var capturedProfile *StudentProfile
	users := &mockUserRepo{
		createStudentFn: func(ctx context.Context, user *User, profile *StudentProfile) error {
			capturedUser = user
			capturedProfile = profile
			return nil
		},
	}
	sessions := &mockSessionRepo{}

	svc := newTestAuthService(t, users, sessions)
	city := "Hanoi"
	result, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Email:     "Alice@Example.com",
		FirstName: "Alice",
		LastName:  "Nguyen",
		Password:  "password123",
		City:      &city,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedUser == nil || capturedProfile == nil {
		t.Fatal("expected user and profile to be created together")
	}
	if capturedUser.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", capturedUser.Email)
	}
	if capturedUser.Role != RoleStudent {
		t.Errorf("expected role student, got %s", capturedUser.Role)
	}
	if capturedUser.PasswordHash == nil || *capturedUser.PasswordHash == "" {
		t.Error("expected password hash to be set")
	}
	if capturedProfile.UserID != capturedUser.ID {
		t.Error("expected profile bound to the new user")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
}

func TestRegisterAdmin_Success(t *testing.T) {
	var capturedUser *User
	users := &mockUserRepo{
		createAdminFn: func(ctx context.Context, user *User, profile *AdminProfile) error {
			capturedUser = user
			if profile.UserID != user.ID {
				t.Error("expected profile bound to the new user")
			}
			return nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.RegisterAdmin(context.Background(), RegisterAdminRequest{
		Email:     "boss@example.com",
		FirstName: "Big",
		LastName:  "Boss",
		Password:  "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedUser.Role != RoleAdmin {
		t.Errorf("expected role admin, got %s", capturedUser.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Email:     "taken@example.com",
		FirstName: "Alice",
		LastName:  "Nguyen",
		Password:  "password123",
	})
	assertKind(t, err, apperror.KindConflict)
}

func TestRegister_ValidationReasons(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	assertKind(t, err, apperror.KindValidation)

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	if len(appErr.Errors) < 3 {
		t.Errorf("expected itemized reasons for email, names, and password, got %v", appErr.Errors)
	}
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	for _, password := range []string{"", "short1", "allletters", "12345678"} {
		_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Nguyen",
			Password:  password,
		})
		assertKind(t, err, apperror.KindValidation)
	}
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	user := activeUser(t, "password123")
	var successRecorded bool
	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			if email != "alice@example.com" {
				t.Errorf("expected normalized lookup, got %s", email)
			}
			return user, nil
		},
		recordLoginSuccessFn: func(ctx context.Context, id string) error {
			successRecorded = true
			return nil
		},
	}
	var createdSession *SessionRecord
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, record *SessionRecord) error {
			createdSession = record
			return nil
		},
	}

	svc := newTestAuthService(t, users, sessions)
	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  ALICE@example.com ",
		Password: "password123",
	}, SessionMeta{UserAgent: "test-agent", IP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !successRecorded {
		t.Error("expected failure counter reset on success")
	}
	if createdSession == nil {
		t.Fatal("expected a session record")
	}
	if createdSession.TokenHash == result.RefreshToken {
		t.Error("raw refresh token must never be stored")
	}
	if createdSession.TokenHash != token.HashToken(result.RefreshToken) {
		t.Error("expected session record to hold the token hash")
	}
	if createdSession.UserAgent == nil || *createdSession.UserAgent != "test-agent" {
		t.Error("expected session metadata stamped on the record")
	}
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	if appErr.Message != "invalid email or password" {
		t.Errorf("expected the generic credentials message, got %q", appErr.Message)
	}
}

func TestLogin_WrongPasswordIncrementsFailures(t *testing.T) {
	user := activeUser(t, "password123")
	user.FailedLogins = 2

	var recordedFailures int
	var recordedLock *time.Time
	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
		recordLoginFailureFn: func(ctx context.Context, id string, failures int, lockedUntil *time.Time) error {
			recordedFailures = failures
			recordedLock = lockedUntil
			return nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password1",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)

	if recordedFailures != 3 {
		t.Errorf("expected failure count 3, got %d", recordedFailures)
	}
	if recordedLock != nil {
		t.Error("expected no lockout below the threshold")
	}
}

func TestLogin_FifthFailureLocksAccount(t *testing.T) {
	user := activeUser(t, "password123")
	user.FailedLogins = 4

	var recordedLock *time.Time
	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
		recordLoginFailureFn: func(ctx context.Context, id string, failures int, lockedUntil *time.Time) error {
			recordedLock = lockedUntil
			return nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password1",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)

	if recordedLock == nil {
		t.Fatal("expected lockout deadline on the threshold failure")
	}
	untilUnlock := time.Until(*recordedLock)
	if untilUnlock < 14*time.Minute || untilUnlock > 16*time.Minute {
		t.Errorf("expected ~15 minute lockout, got %v", untilUnlock)
	}
}

func TestLogin_LockedAccountRejectedEvenWithCorrectPassword(t *testing.T) {
	user := activeUser(t, "password123")
	user.FailedLogins = 5
	lockedUntil := time.Now().UTC().Add(10 * time.Minute)
	user.LockedUntil = &lockedUntil

	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindAccountLocked)
}

func TestLogin_ExpiredLockoutAllowsLogin(t *testing.T) {
	user := activeUser(t, "password123")
	user.FailedLogins = 5
	lockedUntil := time.Now().UTC().Add(-time.Minute)
	user.LockedUntil = &lockedUntil

	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, SessionMeta{})
	if err != nil {
		t.Fatalf("expected login to succeed after lockout expiry, got %v", err)
	}
}

func TestLogin_InactiveAccountIsGeneric(t *testing.T) {
	user := activeUser(t, "password123")
	user.IsActive = false

	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)

	var appErr *apperror.AppError
	errors.As(err, &appErr)
	if appErr.Message != "invalid email or password" {
		t.Errorf("inactive account must look like bad credentials, got %q", appErr.Message)
	}
}

func TestLogin_FederatedAccountHasNoPassword(t *testing.T) {
	user := activeUser(t, "password123")
	user.PasswordHash = nil

	users := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(t, users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)
}

// --- Refresh Tests ---

func TestRefresh_Success(t *testing.T) {
	user := activeUser(t, "password123")
	svc := newTestAuthService(t, &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
	}, nil)

	access, err := svc.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		t.Fatalf("issuing access token: %v", err)
	}
	oldRefresh, _ := token.NewRefreshToken()

	var rotatedPresented, rotatedNew string
	svc.sessions = &mockSessionRepo{
		rotateFn: func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
			rotatedPresented = presentedHash
			rotatedNew = newHash
			return user.ID, nil
		},
	}

	result, err := svc.Refresh(context.Background(), access, oldRefresh, SessionMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rotatedPresented != token.HashToken(oldRefresh) {
		t.Error("expected rotation keyed by the presented token's hash")
	}
	if result.RefreshToken == oldRefresh {
		t.Error("expected a fresh refresh token")
	}
	if rotatedNew != token.HashToken(result.RefreshToken) {
		t.Error("expected the stored replacement hash to match the returned token")
	}
	if result.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestRefresh_ExpiredAccessTokenStillAccepted(t *testing.T) {
	user := activeUser(t, "password123")

	// Sign with a negative TTL so the token is authentic but expired.
	expiredIssuer := testIssuer(t, -time.Minute)
	access, err := expiredIssuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		t.Fatalf("issuing access token: %v", err)
	}

	svc := newTestAuthService(t, &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
	}, &mockSessionRepo{
		rotateFn: func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
			return user.ID, nil
		},
	})

	refresh, _ := token.NewRefreshToken()
	if _, err := svc.Refresh(context.Background(), access, refresh, SessionMeta{}); err != nil {
		t.Fatalf("expected refresh to accept the expired access token, got %v", err)
	}
}

func TestRefresh_GarbageAccessTokenRejected(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	refresh, _ := token.NewRefreshToken()
	_, err := svc.Refresh(context.Background(), "not-a-jwt", refresh, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)
}

func TestRefresh_SubjectMismatchBurnsReplacement(t *testing.T) {
	user := activeUser(t, "password123")
	svc := newTestAuthService(t, &mockUserRepo{}, nil)

	access, err := svc.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		t.Fatalf("issuing access token: %v", err)
	}

	var revokedHash string
	var rotatedNew string
	svc.sessions = &mockSessionRepo{
		rotateFn: func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
			rotatedNew = newHash
			return "someone-else", nil
		},
		revokeFn: func(ctx context.Context, tokenHash string) (bool, error) {
			revokedHash = tokenHash
			return true, nil
		},
	}

	refresh, _ := token.NewRefreshToken()
	_, err = svc.Refresh(context.Background(), access, refresh, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)

	if revokedHash == "" {
		t.Fatal("expected the replacement session to be revoked")
	}
	if revokedHash != rotatedNew {
		t.Error("expected the orphaned replacement, not some other record, to be revoked")
	}
}

func TestRefresh_RevokedTokenRejected(t *testing.T) {
	user := activeUser(t, "password123")
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{
		rotateFn: func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
			return "", apperror.NewUnauthorized("refresh token has been revoked")
		},
	})

	access, err := svc.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		t.Fatalf("issuing access token: %v", err)
	}
	refresh, _ := token.NewRefreshToken()
	_, err = svc.Refresh(context.Background(), access, refresh, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)
}

func TestRefresh_InactiveUserRejected(t *testing.T) {
	user := activeUser(t, "password123")
	user.IsActive = false

	svc := newTestAuthService(t, &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
	}, nil)

	access, err := svc.issuer.IssueAccessToken(subjectOf(user))
	if err != nil {
		t.Fatalf("issuing access token: %v", err)
	}
	svc.sessions = &mockSessionRepo{
		rotateFn: func(ctx context.Context, presentedHash, newHash string, newExpiry time.Time, meta SessionMeta) (string, error) {
			return user.ID, nil
		},
	}

	refresh, _ := token.NewRefreshToken()
	_, err = svc.Refresh(context.Background(), access, refresh, SessionMeta{})
	assertKind(t, err, apperror.KindUnauthorized)
}

// --- Logout Tests ---

func TestLogout_RevokesByHash(t *testing.T) {
	var revokedHash string
	sessions := &mockSessionRepo{
		revokeFn: func(ctx context.Context, tokenHash string) (bool, error) {
			revokedHash = tokenHash
			return true, nil
		},
	}

	svc := newTestAuthService(t, &mockUserRepo{}, sessions)
	raw, _ := token.NewRefreshToken()
	revoked, err := svc.Logout(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revoked {
		t.Error("expected revocation to report success")
	}
	if revokedHash != token.HashToken(raw) {
		t.Error("expected revocation keyed by the token hash")
	}
}

func TestLogout_UnknownTokenIsNotAnError(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	revoked, err := svc.Logout(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked {
		t.Error("expected no-op revocation to report false")
	}
}

func TestLogoutAll(t *testing.T) {
	var capturedUserID string
	sessions := &mockSessionRepo{
		revokeAllFn: func(ctx context.Context, userID string) (int64, error) {
			capturedUserID = userID
			return 3, nil
		},
	}

	svc := newTestAuthService(t, &mockUserRepo{}, sessions)
	revoked, err := svc.LogoutAll(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revoked {
		t.Error("expected revocation to report success")
	}
	if capturedUserID != "user-123" {
		t.Errorf("expected user-123, got %s", capturedUserID)
	}
}

// --- Misc ---

func TestExternalLogin_NotImplemented(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &mockSessionRepo{})
	_, err := svc.ExternalLogin(context.Background(), "facebook")
	assertKind(t, err, apperror.KindNotImplemented)
}

func TestDeleteAccount_PropagatesNotFound(t *testing.T) {
	users := &mockUserRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return apperror.NewNotFound("user not found")
		},
	}
	svc := newTestAuthService(t, users, &mockSessionRepo{})
	err := svc.DeleteAccount(context.Background(), "ghost")
	assertKind(t, err, apperror.KindNotFound)
}

// --- Password Hashing ---

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("correct-horse-battery-1")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if !verifyPassword("correct-horse-battery-1", hash) {
		t.Error("expected correct password to verify")
	}
	if verifyPassword("wrong-password-1", hash) {
		t.Error("expected wrong password to fail verification")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty string", ""},
		{"random text", "not-a-hash"},
		{"too few parts", "$argon2id$v=19$m=65536"},
		{"corrupted salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!invalid$aGFzaA"},
		{"corrupted hash", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyPassword("password1", tt.hash) {
				t.Error("expected invalid hash to fail verification")
			}
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := hashPassword("same-password-1")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	hash2, err := hashPassword("same-password-1")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash1 == hash2 {
		t.Error("expected different salts to produce different hashes")
	}
}
