package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vipps-adapter/internal/auth"
	"github.com/noah-isme/vipps-adapter/internal/common"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Issuer("vipps-adapter-test").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	for name, value := range claims {
		builder = builder.Claim(name, value)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)
	return string(signed)
}

func TestRequireAuthPopulatesCallerContext(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Secret: testSecret, Issuer: "vipps-adapter-test"}
	var gotAPIType, gotSession, gotChannel string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIType, _ = common.APIType(r.Context())
		gotSession, _ = common.SessionToken(r.Context())
		gotChannel, _ = common.ChannelToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, map[string]any{
		auth.ClaimAPIType:      common.APITypeAdmin,
		auth.ClaimSessionToken: "session-token",
		auth.ClaimChannelToken: "channel-token",
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/settle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, common.APITypeAdmin, gotAPIType)
	require.Equal(t, "session-token", gotSession)
	require.Equal(t, "channel-token", gotChannel)
}

func TestRequireAuthDefaultsToShop(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Secret: testSecret}
	var gotAPIType string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIType, _ = common.APIType(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, map[string]any{auth.ClaimSessionToken: "session-token"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/intent", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, common.APITypeShop, gotAPIType)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Secret: testSecret}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payments/vipps/intent", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthRejectsWrongKey(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Secret: []byte("other-secret")}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, map[string]any{auth.ClaimAPIType: common.APITypeAdmin})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/settle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	mw := auth.Middleware{Secret: testSecret, Issuer: "expected-issuer"}
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, map[string]any{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/settle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
