package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/courts/api/transport"
	"github.com/fastygo/courts/domain"
	"github.com/fastygo/courts/internal/infrastructure/monitor"
	"github.com/fastygo/courts/pkg/clock"
	"github.com/fastygo/courts/pkg/httpcontext"
	"github.com/fastygo/courts/repository"
	"github.com/fastygo/courts/usecase/availability"
)

type fakeReservations struct {
	mu   sync.Mutex
	rows []domain.Reservation
	err  error
}

func (f *fakeReservations) find(resourceID, date, slot string) *domain.Reservation {
	for i := range f.rows {
		r := &f.rows[i]
		if r.IsActive() && r.ResourceID == resourceID && r.Date == date && r.Slot == slot {
			return r
		}
	}
	return nil
}

func (f *fakeReservations) FindActive(_ context.Context, resourceID, date, slot string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if r := f.find(resourceID, date, slot); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeReservations) InsertActive(_ context.Context, res *domain.Reservation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.find(res.ResourceID, res.Date, res.Slot) != nil {
		return 0, domain.ErrSlotConflict
	}
	res.ID = int64(len(f.rows) + 1)
	res.CreatedAt = time.Now()
	f.rows = append(f.rows, *res)
	return res.ID, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id int64, status domain.ReservationStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || int(id) > len(f.rows) {
		return 0, domain.ErrReservationNotFound
	}
	f.rows[id-1].Status = status
	return 1, nil
}

func (f *fakeReservations) ListActive(_ context.Context, date string) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Reservation
	for _, r := range f.rows {
		if r.IsActive() && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if id < 1 || int(id) > len(f.rows) {
		return nil, domain.ErrReservationNotFound
	}
	cp := f.rows[id-1]
	return &cp, nil
}

func (f *fakeReservations) List(context.Context, repository.ReservationFilter) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Reservation(nil), f.rows...), nil
}

func (f *fakeReservations) UpdateLabel(_ context.Context, id int64, label string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id < 1 || int(id) > len(f.rows) {
		return nil, domain.ErrReservationNotFound
	}
	f.rows[id-1].Label = label
	cp := f.rows[id-1]
	return &cp, nil
}

func newHandlers(store *fakeReservations) (*ReservationHandler, *ScheduleHandler) {
	clk := clock.Fixed("2025-05-20")
	engine := availability.New(store, clk, availability.Config{
		Slots:     []string{"09:00-10:00", "10:00-11:00", "11:00-12:00"},
		Resources: []string{"1", "2"},
	})
	adapter := httpcontext.NewAdapter(time.Second)
	return NewReservationHandler(engine, adapter, nil), NewScheduleHandler(engine, clk, "America/Lima", adapter, nil)
}

func request(method, body string, params map[string]string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	for k, v := range params {
		ctx.SetUserValue(k, v)
	}
	return &ctx
}

func envelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

const anaBody = `{"resource_id":"1","date":"2025-06-01","slot":"10:00-11:00","label":"Ana"}`

func TestReservationLifecycle(t *testing.T) {
	store := &fakeReservations{}
	rh, sh := newHandlers(store)

	ctx := request(http.MethodPost, anaBody, nil)
	rh.Create(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))

	ctx = request(http.MethodPost, `{"resource_id":"1","date":"2025-06-01","slot":"10:00-11:00","label":"Luis"}`, nil)
	rh.Create(ctx)
	require.Equal(t, http.StatusConflict, ctx.Response.StatusCode())
	env := envelope(t, ctx)
	assert.Equal(t, string(domain.ErrCodeSlotTaken), env.Code)
	assert.Equal(t, map[string]interface{}{"label": "Ana"}, env.Meta)

	ctx = request(http.MethodGet, "", map[string]string{"date": "2025-06-01"})
	ctx.QueryArgs().Set("resource", "1")
	sh.Available(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env = envelope(t, ctx)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, []interface{}{"09:00-10:00", "11:00-12:00"}, data["slots"])

	ctx = request(http.MethodPost, "", map[string]string{"id": "1"})
	rh.Cancel(ctx)
	require.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	ctx = request(http.MethodPost, `{"resource_id":"1","date":"2025-06-01","slot":"10:00-11:00","label":"Luis"}`, nil)
	rh.Create(ctx)
	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
}

func TestReservationBadInput(t *testing.T) {
	rh, _ := newHandlers(&fakeReservations{})

	ctx := request(http.MethodPost, `{not json`, nil)
	rh.Create(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = request(http.MethodPost, `{"resource_id":"1","date":"2025-01-01","slot":"10:00-11:00","label":"Ana"}`, nil)
	rh.Create(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeInvalid), envelope(t, ctx).Code)

	ctx = request(http.MethodGet, "", map[string]string{"id": "abc"})
	rh.Get(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = request(http.MethodGet, "", map[string]string{"id": "42"})
	rh.Get(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestStorageOutageIsServiceUnavailable(t *testing.T) {
	store := &fakeReservations{err: errors.New("connection refused")}
	rh, sh := newHandlers(store)

	ctx := request(http.MethodPost, anaBody, nil)
	rh.Create(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	env := envelope(t, ctx)
	assert.Equal(t, string(domain.ErrCodeUnavailable), env.Code)
	assert.NotContains(t, env.Error, "connection refused")

	ctx = request(http.MethodGet, "", map[string]string{"date": "2025-06-01"})
	sh.Grid(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
}

func TestScheduleGridAndCheck(t *testing.T) {
	store := &fakeReservations{}
	rh, sh := newHandlers(store)
	rh.Create(request(http.MethodPost, anaBody, nil))

	ctx := request(http.MethodGet, "", map[string]string{"date": "2025-06-01"})
	sh.Grid(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var body struct {
		Data domain.Grid `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Len(t, body.Data.Cells, 3)
	assert.Equal(t, "Ana", body.Data.Cells["10:00-11:00"]["1"].Label)
	assert.Nil(t, body.Data.Cells["10:00-11:00"]["2"])

	ctx = request(http.MethodGet, "", map[string]string{"date": "2025-06-01"})
	ctx.QueryArgs().Set("resource", "1")
	ctx.QueryArgs().Set("slot", "10:00-11:00")
	sh.Check(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	data := envelope(t, ctx).Data.(map[string]interface{})
	assert.Equal(t, false, data["available"])
	assert.Equal(t, "Ana", data["label"])

	ctx = request(http.MethodGet, "", map[string]string{"date": "june"})
	sh.Grid(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())

	ctx = request(http.MethodGet, "", nil)
	sh.Config(ctx)
	data = envelope(t, ctx).Data.(map[string]interface{})
	assert.Equal(t, "2025-05-20", data["today"])
	assert.Equal(t, []interface{}{"1", "2"}, data["courts"])
}

func TestReservationListPaging(t *testing.T) {
	rh, _ := newHandlers(&fakeReservations{})

	ctx := request(http.MethodGet, "", nil)
	ctx.QueryArgs().Set("offset", "-1")
	rh.List(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeInvalid), envelope(t, ctx).Code)

	for _, limit := range []string{"-5", "1000", ""} {
		ctx = request(http.MethodGet, "", nil)
		ctx.QueryArgs().Set("limit", limit)
		rh.List(ctx)
		require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), "limit %q", limit)
		meta := envelope(t, ctx).Meta.(map[string]interface{})
		assert.EqualValues(t, repository.MaxPageSize, meta["limit"], "limit %q", limit)
	}

	ctx = request(http.MethodGet, "", nil)
	ctx.QueryArgs().Set("limit", "20")
	rh.List(ctx)
	assert.EqualValues(t, 20, envelope(t, ctx).Meta.(map[string]interface{})["limit"])
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealth(t *testing.T) {
	ctx := request(http.MethodGet, "", nil)
	NewHealthHandler(staticStatus{Ready: true}, nil, nil).Check(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx = request(http.MethodGet, "", nil)
	NewHealthHandler(staticStatus{Ready: false}, nil, nil).Check(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, "DEGRADED", envelope(t, ctx).Code)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.Invalid("bad"), http.StatusBadRequest},
		{domain.NewSlotTakenError("1", "2025-06-01", "10:00-11:00", "Ana"), http.StatusConflict},
		{domain.ErrPurchaseAlreadyPaid, http.StatusConflict},
		{domain.ErrCustomerNotFound, http.StatusNotFound},
		{domain.Unavailable("x", errors.New("y")), http.StatusServiceUnavailable},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}
