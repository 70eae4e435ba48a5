package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/eduseek/eduseek/internal/apperror"
	"github.com/eduseek/eduseek/internal/config"
	"github.com/eduseek/eduseek/internal/token"
)

// oauthStateKeyPrefix is the Redis key prefix for pending authorizations.
// The value is the PKCE verifier; the key encodes the state parameter.
const oauthStateKeyPrefix = "oauth:google:"

// oauthStateTTL bounds how long an authorization URL stays redeemable.
const oauthStateTTL = 5 * time.Minute

// googleUserinfoURL is the OpenID Connect userinfo endpoint.
const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// googleEndpoint is Google's OAuth2 authorization and token endpoints.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleService handles the Google OAuth authorization-code flow: building
// the authorization URL (with state and PKCE), exchanging the code, and
// resolving or provisioning the local account.
type GoogleService interface {
	// BeginLogin returns the provider authorization URL. The state and
	// PKCE verifier are stashed server-side and must round-trip through
	// CompleteLogin.
	BeginLogin(ctx context.Context) (string, error)

	// CompleteLogin validates the state, exchanges the code, fetches the
	// profile, and issues a local token pair for the resolved account.
	CompleteLogin(ctx context.Context, code, state string, meta SessionMeta) (*AuthResult, error)

	// Enabled reports whether a Google client is configured. Routes return
	// 501 when it is not.
	Enabled() bool
}

// googleService implements GoogleService on top of golang.org/x/oauth2.
type googleService struct {
	users    UserRepository
	sessions SessionRepository
	issuer   *token.Issuer
	redis    *redis.Client

	oauth      *oauth2.Config
	refreshTTL time.Duration
	timeout    time.Duration
}

// NewGoogleService creates the Google federation service.
func NewGoogleService(users UserRepository, sessions SessionRepository, issuer *token.Issuer,
	rdb *redis.Client, cfg config.GoogleConfig, refreshTTL time.Duration) GoogleService {
	return &googleService{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		redis:    rdb,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		refreshTTL: refreshTTL,
		timeout:    cfg.HTTPTimeout,
	}
}

// Enabled reports whether a Google client id is configured.
func (s *googleService) Enabled() bool {
	return s.oauth.ClientID != ""
}

// BeginLogin generates a state value and PKCE verifier, stashes the
// verifier in Redis keyed by state, and returns the authorization URL.
// offline access and forced consent make Google return a refresh-capable
// grant on every pass instead of only the first.
func (s *googleService) BeginLogin(ctx context.Context) (string, error) {
	state, err := newStateValue()
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("generating oauth state: %w", err))
	}
	verifier := oauth2.GenerateVerifier()

	key := oauthStateKeyPrefix + state
	if err := s.redis.Set(ctx, key, verifier, oauthStateTTL).Err(); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("stashing oauth state: %w", err))
	}

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	return url, nil
}

// googleProfile is the subset of the userinfo response we consume.
type googleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// CompleteLogin finishes the authorization-code flow. The state must
// resolve a stashed verifier (anti-CSRF) and is consumed on first use.
// The exchange is bounded by the configured timeout and never retried --
// a replayed code exchange is not idempotent at the provider.
func (s *googleService) CompleteLogin(ctx context.Context, code, state string, meta SessionMeta) (*AuthResult, error) {
	if code == "" || state == "" {
		return nil, apperror.NewValidation("authorization response is invalid",
			"code and state are required")
	}

	verifier, err := s.redis.GetDel(ctx, oauthStateKeyPrefix+state).Result()
	if err == redis.Nil {
		return nil, apperror.NewUnauthorized("unknown or expired authorization state")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading oauth state: %w", err))
	}

	// Route the oauth2 package's HTTP calls through a client with a
	// deadline so a stalled provider cannot pin a request forever.
	httpClient := &http.Client{Timeout: s.timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	tok, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		slog.Warn("google code exchange failed", slog.Any("error", err))
		return nil, apperror.NewUnauthorized("authorization code exchange failed")
	}

	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, apperror.NewUnauthorized("provider profile has no email")
	}

	user, err := s.resolveAccount(ctx, profile)
	if err != nil {
		return nil, err
	}

	slog.Info("google login completed",
		slog.String("user_id", user.ID),
		slog.Bool("email_verified", profile.EmailVerified),
	)

	return s.issuePair(ctx, user, meta)
}

// fetchProfile retrieves the userinfo document with the provider token.
func (s *googleService) fetchProfile(ctx context.Context, tok *oauth2.Token) (*googleProfile, error) {
	client := s.oauth.Client(ctx, tok)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		slog.Warn("google userinfo request failed", slog.Any("error", err))
		return nil, apperror.NewUnauthorized("fetching provider profile failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.NewUnauthorized("fetching provider profile failed")
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("decoding provider profile: %w", err))
	}
	return &profile, nil
}

// resolveAccount maps a provider profile to a local user, provisioning a
// student account on first login. An unverified provider email does not
// block federation: the account is simply created unconfirmed, and the
// flag only ever moves forward to true once the provider reports verified.
func (s *googleService) resolveAccount(ctx context.Context, profile *googleProfile) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if !user.IsActive {
			return nil, apperror.NewUnauthorized("account is inactive")
		}
		if profile.EmailVerified && !user.EmailConfirmed {
			if err := s.users.SetEmailConfirmed(ctx, user.ID, true); err != nil {
				slog.Warn("failed to sync email_confirmed",
					slog.String("user_id", user.ID),
					slog.Any("error", err),
				)
			} else {
				user.EmailConfirmed = true
			}
		}
		return user, nil
	}
	if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	now := time.Now().UTC()
	user = &User{
		ID:             uuid.NewString(),
		Email:          email,
		FirstName:      profile.GivenName,
		LastName:       profile.FamilyName,
		Role:           RoleStudent,
		IsActive:       true,
		EmailConfirmed: profile.EmailVerified,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	profileRow := &StudentProfile{UserID: user.ID, CreatedAt: now}
	if err := s.users.CreateStudent(ctx, user, profileRow); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("provisioning federated user: %w", err))
	}

	slog.Info("federated user provisioned", slog.String("user_id", user.ID))
	return user, nil
}

// issuePair mirrors authService.issuePair for the federation flow.
func (s *googleService) issuePair(ctx context.Context, user *User, meta SessionMeta) (*AuthResult, error) {
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

// newStateValue generates an opaque, unguessable state parameter.
func newStateValue() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
