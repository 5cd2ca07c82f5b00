package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/vipps-adapter/internal/common"
)

// Claims carried by host-issued tokens.
const (
	ClaimAPIType      = "api_type"
	ClaimSessionToken = "session"
	ClaimChannelToken = "channel"
)

// Middleware authenticates host-issued bearer tokens and attaches the caller
// context (API type, session token, channel token) to the request.
type Middleware struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// RequireAuth rejects requests without a valid token.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		tok, err := m.parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}

		ctx := r.Context()
		apiType := common.APITypeShop
		if v, ok := tok.Get(ClaimAPIType); ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				apiType = s
			}
		}
		ctx = common.WithAPIType(ctx, apiType)
		if v, ok := tok.Get(ClaimSessionToken); ok {
			if s, ok := v.(string); ok && s != "" {
				ctx = common.WithSessionToken(ctx, s)
			}
		}
		if v, ok := tok.Get(ClaimChannelToken); ok {
			if s, ok := v.(string); ok && s != "" {
				ctx = common.WithChannelToken(ctx, s)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parse(raw string) (jwt.Token, error) {
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, m.Secret),
		jwt.WithValidate(true),
	}
	if m.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.Issuer))
	}
	if m.Audience != "" {
		options = append(options, jwt.WithAudience(m.Audience))
	}
	if m.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(m.ClockSkew))
	}
	return jwt.Parse([]byte(raw), options...)
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
