package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/courts/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyAdmin      Key = "admin"
	KeySessionID  Key = "session_id"
)

// UserValue keys set by the auth middleware on fasthttp.RequestCtx.
const (
	UserValueAdmin     = "admin"
	UserValueSessionID = "session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with request metadata and, for authenticated requests, the admin identity.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if admin, ok := ctx.UserValue(UserValueAdmin).(string); ok && admin != "" {
		stdCtx = context.WithValue(stdCtx, KeyAdmin, admin)
	}
	if sid, ok := ctx.UserValue(UserValueSessionID).(string); ok && sid != "" {
		stdCtx = context.WithValue(stdCtx, KeySessionID, sid)
	}

	return stdCtx, cancel
}

// Admin returns the authenticated admin username carried by ctx.
func Admin(ctx context.Context) string {
	admin, _ := ctx.Value(KeyAdmin).(string)
	return admin
}

// SessionID returns the session id carried by ctx.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(KeySessionID).(string)
	return sid
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
