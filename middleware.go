package auth

import (
	"github.com/gofiber/fiber/v2"
)

// GateConfig wires the auth gate. Authenticator and at minimum one
// extractor source are required.
type GateConfig struct {
	Auth        Authenticator
	TokenLookup string
	AuthScheme  string
	Logger      Logger

	// ErrorHandler overrides the uniform unauthorized response. It
	// receives the internal cause but must not leak it to the client.
	ErrorHandler fiber.ErrorHandler
}

// Gate authenticates requests before they reach business handlers.
// Each request walks a single linear chain: extract token, verify
// signature and expiry, load the identity, attach the projection. Any
// failed step short-circuits to one uniform 401; the cause, missing
// token, bad signature, expiry, or a deleted user, is logged but never
// distinguished to the client.
type Gate struct {
	auth       Authenticator
	extractors []TokenExtractor
	logger     Logger
	onError    fiber.ErrorHandler
}

// NewGate builds the authentication middleware factory.
func NewGate(cfg GateConfig) *Gate {
	if cfg.Auth == nil {
		panic("auth: gate requires an Authenticator")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	onError := cfg.ErrorHandler
	if onError == nil {
		onError = func(c *fiber.Ctx, err error) error {
			return Unauthorized(c)
		}
	}

	return &Gate{
		auth:       cfg.Auth,
		extractors: GetExtractors(cfg.TokenLookup, cfg.AuthScheme),
		logger:     logger,
		onError:    onError,
	}
}

// RequireAuth returns the middleware enforcing an authenticated
// session. On success the identity projection is stored in fiber locals
// and, together with the verified claims, in the request context for
// downstream handlers.
func (g *Gate) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := ExtractRawToken(c, g.extractors)
		if err != nil {
			g.logger.Debug("gate: no token on request %s", c.Path())
			return g.onError(c, err)
		}

		session, err := g.auth.SessionFromToken(raw)
		if err != nil {
			g.logger.Debug("gate: token rejected on %s: %v", c.Path(), err)
			return g.onError(c, err)
		}

		identity, err := g.auth.IdentityFromSession(c.UserContext(), session)
		if err != nil {
			g.logger.Debug("gate: identity lookup failed for %s: %v", session.GetUserID(), err)
			return g.onError(c, err)
		}

		c.Locals(IdentityLocalsKey, identity)

		ctx := WithIdentityContext(c.UserContext(), identity)
		if withClaims, ok := session.(interface{ Claims() AuthClaims }); ok {
			if claims := withClaims.Claims(); claims != nil {
				ctx = WithClaimsContext(ctx, claims)
			}
		}
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireAdmin returns the middleware enforcing the admin role. It must
// run after RequireAuth; a request that never passed the auth gate is
// still a 401, not a 403. The 403 body does not disclose which role the
// route wanted.
func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromFiber(c)
		if !ok {
			g.logger.Warn("gate: admin check before auth gate on %s", c.Path())
			return g.onError(c, ErrUnableToFindSession)
		}

		if !IsAdminRole(UserRole(identity.Role())) {
			g.logger.Debug("gate: admin gate rejected for %s", identity.ID())
			return Forbidden(c)
		}

		return c.Next()
	}
}

// Unauthorized writes the uniform 401 response.
func Unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
	})
}

// Forbidden writes the uniform 403 response.
func Forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"message": "Forbidden",
	})
}
