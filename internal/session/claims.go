package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what can be read from a JWT without verifying it. Opaque
// tokens yield an error.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt *time.Time
	Raw       jwt.MapClaims
}

// ParseClaims decodes the payload of token locally (unsigned).
func ParseClaims(token string) (*Claims, error) {
	token = StripBearer(strings.TrimSpace(token))
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("opaque token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}
	c := &Claims{Raw: mc}
	c.Subject, _ = mc.GetSubject()
	if c.Subject == "" {
		if id, ok := mc["user_id"].(string); ok {
			c.Subject = id
		}
	}
	if e, ok := mc["email"].(string); ok {
		c.Email = e
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

// Expired reports whether the claims carry an expiry before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
