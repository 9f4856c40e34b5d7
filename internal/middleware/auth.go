package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/pkg/httpcontext"
)

// TokenVerifier validates a bearer token and returns the session it belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// JWTAuth rejects requests without a valid admin token. On success the admin
// username and session id are stored as user values for the handler.
func JWTAuth(verifier TokenVerifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			verifyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			session, err := verifier.Verify(verifyCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnavailable) {
					logger.Error("session store unavailable", zap.Error(err))
					respond(ctx, http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable), "session store unavailable")
					return
				}
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid or expired token")
				return
			}

			ctx.SetUserValue(httpcontext.UserValueAdmin, session.Username)
			ctx.SetUserValue(httpcontext.UserValueSessionID, session.ID)
			ctx.Request.Header.Set("X-Admin", session.Username)

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="courts"`)
	respond(ctx, http.StatusUnauthorized, string(domain.ErrCodeUnauthorized), msg)
}

func respond(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	body, _ := json.Marshal(transport.NewError(code, msg, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
