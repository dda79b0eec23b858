package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Defaults for the session transport. The cookie deliberately expires
// before the token it carries; a token resent manually via the bearer
// header verifies until its own exp claim.
const (
	DefaultCookieName   = "token"
	DefaultCookieMaxAge = 86400
	DefaultAuthScheme   = "Bearer"
	DefaultTokenLookup  = "cookie:" + DefaultCookieName + ",header:" + fiber.HeaderAuthorization
)

// TokenExtractor pulls a raw token out of a request, returning
// ErrUnableToFindSession when its source is absent.
type TokenExtractor func(c *fiber.Ctx) (string, error)

// ExtractRawToken runs the extractors in order and returns the first
// token found. The chain keeps transport fallback (cookie first, then
// bearer header) in one place instead of scattering branches across
// handlers.
func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a token lookup expression such as
// "cookie:token,header:Authorization" into an ordered extractor chain.
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := DefaultAuthScheme
	if len(authSchemes) > 0 && authSchemes[0] != "" {
		authScheme = authSchemes[0]
	}

	if tokenLookup == "" {
		tokenLookup = DefaultTokenLookup
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns an extractor that reads a scheme-prefixed header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrUnableToFindSession
	}
}

// tokenFromCookie returns an extractor that reads the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrUnableToFindSession
		}
		return token, nil
	}
}

// tokenFromQuery returns an extractor that reads the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrUnableToFindSession
		}
		return token, nil
	}
}

// CookiePolicy captures the response-side transport settings. Secure
// and SameSite flip together on the production flag: cross-site admin
// UIs need SameSite=None, which browsers only accept over HTTPS.
type CookiePolicy struct {
	Name       string
	MaxAge     int
	Production bool
}

// NewCookiePolicy builds a policy from config, falling back to the
// transport defaults.
func NewCookiePolicy(cfg Config) CookiePolicy {
	policy := CookiePolicy{
		Name:       DefaultCookieName,
		MaxAge:     DefaultCookieMaxAge,
		Production: cfg.IsProduction(),
	}

	if name := cfg.GetCookieName(); name != "" {
		policy.Name = name
	}

	if maxAge := cfg.GetCookieMaxAge(); maxAge > 0 {
		policy.MaxAge = maxAge
	}

	return policy
}

func (p CookiePolicy) sameSite() string {
	if p.Production {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}

// Write sets the session cookie carrying the token.
func (p CookiePolicy) Write(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   p.MaxAge,
		Expires:  time.Now().Add(time.Duration(p.MaxAge) * time.Second),
		HTTPOnly: true,
		Secure:   p.Production,
		SameSite: p.sameSite(),
	})
}

// Clear expires the session cookie. It reuses the exact name and flags
// used at set time; browsers silently ignore clears whose attributes
// don't match.
func (p CookiePolicy) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * 24 * 365),
		HTTPOnly: true,
		Secure:   p.Production,
		SameSite: p.sameSite(),
	})
}
