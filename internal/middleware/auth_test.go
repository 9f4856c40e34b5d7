package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/httpcontext"
)

type stubVerifier struct {
	token string
	err   error
}

func (s stubVerifier) Verify(_ context.Context, token string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{ID: "sid-1", Username: "admin"}, nil
}

func run(t *testing.T, v TokenVerifier, header string) (*fasthttp.RequestCtx, bool) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	called := false
	JWTAuth(v, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		assert.Equal(t, "admin", ctx.UserValue(httpcontext.UserValueAdmin))
		assert.Equal(t, "sid-1", ctx.UserValue(httpcontext.UserValueSessionID))
		ctx.SetStatusCode(http.StatusNoContent)
	})(&ctx)
	return &ctx, called
}

func TestJWTAuth(t *testing.T) {
	v := stubVerifier{token: "good"}

	ctx, called := run(t, v, "Bearer good")
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	ctx, called = run(t, v, "bearer good")
	assert.True(t, called)

	for _, header := range []string{"", "Bearer bad", "Basic Zm9vOmJhcg=="} {
		ctx, called = run(t, v, header)
		assert.False(t, called, header)
		assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode(), header)

		var env transport.Envelope
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, string(domain.ErrCodeUnauthorized), env.Code)
	}
}

func TestJWTAuthSessionStoreDown(t *testing.T) {
	v := stubVerifier{err: domain.Unavailable("load session failed", errors.New("dial tcp"))}
	ctx, called := run(t, v, "Bearer good")
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
}
