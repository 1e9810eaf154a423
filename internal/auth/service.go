package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/kanban/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrSessionNotFound    = errors.New("auth: session not found")
	ErrUnknownProvider    = errors.New("auth: unknown oauth provider")
	ErrInvalidState       = errors.New("auth: invalid oauth state")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

const (
	minPasswordLen = 6
	oauthStateTTL  = 10 * time.Minute
)

// SessionStore tracks active sessions and pending OAuth states.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (uuid.UUID, bool, error)
	Extend(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
	SaveState(ctx context.Context, state, provider string, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) (string, bool, error)
}

// Publisher delivers auth state changes to the user's listeners.
type Publisher interface {
	PublishAuthChange(ctx context.Context, userID uuid.UUID, change StateChange) error
}

// Service provides authentication and session operations.
type Service struct {
	userRepo   domain.UserRepository
	sessions   SessionStore
	events     Publisher
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	providers  map[string]*OAuthProvider
}

// NewService creates a new auth service. events may be nil.
func NewService(userRepo domain.UserRepository, sessions SessionStore, events Publisher, jwtSecret string, accessTTL, refreshTTL time.Duration, providers ...*OAuthProvider) *Service {
	s := &Service{
		userRepo:   userRepo,
		sessions:   sessions,
		events:     events,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		providers:  make(map[string]*OAuthProvider, len(providers)),
	}
	for _, p := range providers {
		s.providers[p.Name] = p
	}
	return s
}

// Providers lists the names of the enabled OAuth providers.
func (s *Service) Providers() []string {
	return slices.Sorted(maps.Keys(s.providers))
}

// SignUp creates a user with email/password and opens a session for it.
// The password is hashed with argon2id before storage.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("auth.SignUp: password must be at least %d characters: %w", minPasswordLen, domain.ErrInvalidInput)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", ErrUserAlreadyExists)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.SignUp: %w", ErrUserAlreadyExists)
		}
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}
	return sess, nil
}

// SignIn validates email/password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("auth.SignIn: user lookup failed")
		}
		return nil, fmt.Errorf("auth.SignIn: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("auth.SignIn: %w", ErrInvalidCredentials)
	}

	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("auth.SignIn: %w", err)
	}
	return sess, nil
}

// GetSession validates an access token and checks that its session has not
// been revoked.
func (s *Service) GetSession(ctx context.Context, accessToken string) (*Principal, error) {
	userID, sessionID, err := ValidateAccessToken(s.jwtSecret, accessToken)
	if err != nil {
		return nil, fmt.Errorf("auth.GetSession: %w", err)
	}

	owner, ok, err := s.sessions.Active(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetSession: %w", err)
	}
	if !ok || owner != userID {
		return nil, fmt.Errorf("auth.GetSession: %w", ErrSessionNotFound)
	}

	return &Principal{UserID: userID, SessionID: sessionID}, nil
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.GetUser: %w", ErrUserNotFound)
		}
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

// RefreshSession exchanges a refresh token for a new token pair on the same
// session and extends the session's lifetime.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh || claims.SessionID == "" {
		return nil, fmt.Errorf("auth.RefreshSession: %w", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: invalid user id: %w", ErrInvalidToken)
	}

	owner, ok, err := s.sessions.Active(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: %w", err)
	}
	if !ok || owner != userID {
		return nil, fmt.Errorf("auth.RefreshSession: %w", ErrSessionNotFound)
	}

	// The user may have been removed since the session was opened.
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: %w", err)
	}

	if ok, err := s.sessions.Extend(ctx, claims.SessionID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("auth.RefreshSession: %w", ErrSessionNotFound)
	}

	sess, err := s.issueSession(user, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshSession: %w", err)
	}

	s.publish(ctx, user.ID, claims.SessionID, EventTokenRefreshed)
	return sess, nil
}

// SignOut revokes the principal's session. Tokens issued for it stop
// working immediately.
func (s *Service) SignOut(ctx context.Context, p *Principal) error {
	if err := s.sessions.Revoke(ctx, p.SessionID); err != nil {
		return fmt.Errorf("auth.SignOut: %w", err)
	}

	s.publish(ctx, p.UserID, p.SessionID, EventSignedOut)
	return nil
}

// BeginOAuth returns the provider's authorization URL together with a
// single-use state value that CompleteOAuth accepts for ten minutes.
func (s *Service) BeginOAuth(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("auth.BeginOAuth: %q: %w", provider, ErrUnknownProvider)
	}

	state, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("auth.BeginOAuth: %w", err)
	}

	if err := s.sessions.SaveState(ctx, state, provider, oauthStateTTL); err != nil {
		return "", fmt.Errorf("auth.BeginOAuth: %w", err)
	}

	return p.AuthorizationURL(state), nil
}

// CompleteOAuth exchanges the authorization code, resolves the local user
// through its OAuth link (creating or linking it on first sign-in) and opens
// a session.
func (s *Service) CompleteOAuth(ctx context.Context, provider, state, code string) (*Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("auth.CompleteOAuth: %q: %w", provider, ErrUnknownProvider)
	}

	issuedFor, ok, err := s.sessions.ConsumeState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("auth.CompleteOAuth: %w", err)
	}
	if !ok || issuedFor != provider {
		return nil, fmt.Errorf("auth.CompleteOAuth: %w", ErrInvalidState)
	}

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth.CompleteOAuth: %w", err)
	}

	user, err := s.resolveOAuthUser(ctx, provider, info)
	if err != nil {
		return nil, fmt.Errorf("auth.CompleteOAuth: %w", err)
	}

	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("auth.CompleteOAuth: %w", err)
	}
	return sess, nil
}

func (s *Service) resolveOAuthUser(ctx context.Context, provider string, info *UserInfo) (*domain.User, error) {
	link, err := s.userRepo.GetOAuthLink(ctx, provider, info.ProviderID)
	switch {
	case err == nil:
		return s.userRepo.GetByID(ctx, link.UserID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	var user *domain.User
	if info.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, info.Email)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if user == nil {
		now := time.Now()
		user = &domain.User{
			ID:        uuid.New(),
			Email:     strings.ToLower(info.Email),
			Name:      info.Name,
			AvatarURL: info.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	link = &domain.UserOAuthLink{
		ID:         uuid.New(),
		UserID:     user.ID,
		Provider:   provider,
		ProviderID: info.ProviderID,
		CreatedAt:  time.Now(),
	}
	if err := s.userRepo.CreateOAuthLink(ctx, link); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) openSession(ctx context.Context, user *domain.User) (*Session, error) {
	sessionID, err := randomHex(16)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, sessionID, user.ID, s.refreshTTL); err != nil {
		return nil, err
	}

	sess, err := s.issueSession(user, sessionID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, sessionID, EventSignedIn)
	return sess, nil
}

func (s *Service) issueSession(user *domain.User, sessionID string) (*Session, error) {
	access, err := IssueAccessToken(s.jwtSecret, user.ID, sessionID, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := IssueRefreshToken(s.jwtSecret, user.ID, sessionID, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		ExpiresAt:    time.Now().Add(s.accessTTL),
		User:         user,
	}, nil
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, sessionID string, event Event) {
	if s.events == nil {
		return
	}
	change := StateChange{Event: event, UserID: userID, SessionID: sessionID, At: time.Now()}
	if err := s.events.PublishAuthChange(ctx, userID, change); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("event", string(event)).Msg("auth: publish state change failed")
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email address: %w", domain.ErrInvalidInput)
	}
	return email, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1
}
