package auth

import (
	"context"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auther orchestrates identity verification and token issuance. The
// signing key is injected once at construction; rotating it invalidates
// every outstanding token.
type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a freshly signed token.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	token, _, err := s.LoginIdentity(ctx, identifier, password)
	return token, err
}

// LoginIdentity verifies the credentials and returns the signed token
// together with the verified identity, so callers responding with the
// account projection do not need a second lookup.
func (s *Auther) LoginIdentity(ctx context.Context, identifier, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("login verify identity error: %v", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value")
		return "", nil, ErrMismatchedHashAndPassword
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		return "", nil, err
	}

	return token, identity, nil
}

// Refresh re-signs a token for the subject of an already verified
// session. It never resurrects an expired token: callers only reach it
// through SessionFromToken, which rejects expiry. Credentials are not
// re-verified.
func (s *Auther) Refresh(ctx context.Context, session Session) (string, error) {
	if session == nil {
		return "", ErrTokenInvalid
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   session.GetUserID(),
			Audience:  s.audienceClaim(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.ttl()) * time.Hour)),
		},
		UID:      session.GetUserID(),
		UserRole: session.GetRole(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return s.tokenService.SignClaims(claims)
}

// IdentityFromSession resolves the live user record behind a session.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("identity from session lookup failed: %v", err)
		return nil, err
	}

	return identity, nil
}

// SessionFromToken verifies a raw token and decodes it into a session.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("session from token failed to map claims: %v", err)
		return nil, err
	}

	return session, nil
}

func (s *Auther) ttl() int {
	if s.tokenExpiration > 0 {
		return s.tokenExpiration
	}
	return DefaultTokenExpiration
}

func (s *Auther) audienceClaim() jwt.ClaimStrings {
	if len(s.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(s.audience))
	copy(aud, s.audience)
	return aud
}
