package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"dispatchd/internal/hub"
	"dispatchd/pkg/types"
)

func newTestHub(t *testing.T) *hub.Hub {
	t.Helper()
	h := hub.New(zerolog.Nop())
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

func TestChannelAndSinkFlow(t *testing.T) {
	svc := newTestHub(t)
	r := NewMux(svc)

	if w := do(t, r, http.MethodPost, "/sinks", `{"name":"mem","kind":"memory","capacity":8}`); w.Code != http.StatusCreated {
		t.Fatalf("create sink status=%d body=%s", w.Code, w.Body.String())
	}
	w := do(t, r, http.MethodPost, "/channels", `{"name":"orders","sinks":["mem"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create channel status=%d body=%s", w.Code, w.Body.String())
	}
	if ch := decode[types.ChannelInfo](t, w); ch.Name != "orders" || len(ch.Sinks) != 1 {
		t.Fatalf("channel=%+v", ch)
	}
	if w := do(t, r, http.MethodPut, "/channels/orders/sinks/mem", ""); w.Code != http.StatusNoContent {
		t.Fatalf("attach status=%d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/channels/orders/emit", `{"name":"created","payload":{"id":7}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("emit status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decode[types.EmitResponse](t, w)
	if resp.Delivered != 2 || resp.Event.ID == "" || resp.Event.Channel != "orders" {
		t.Fatalf("emit response=%+v", resp)
	}

	w = do(t, r, http.MethodGet, "/sinks/mem/events", "")
	if w.Code != http.StatusOK {
		t.Fatalf("events status=%d", w.Code)
	}
	if evs := decode[types.SinkEventsResponse](t, w); len(evs.Events) != 2 || evs.Events[0].Name != "created" {
		t.Fatalf("events=%+v", evs)
	}

	if w := do(t, r, http.MethodPost, "/channels/orders/clone", `{"name":"copy"}`); w.Code != http.StatusCreated {
		t.Fatalf("clone status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodPost, "/channels", `{"name":"empty"}`); w.Code != http.StatusCreated {
		t.Fatalf("create empty status=%d", w.Code)
	}
	w = do(t, r, http.MethodPut, "/channels/copy/assign", `{"from":"empty"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status=%d body=%s", w.Code, w.Body.String())
	}
	if ch := decode[types.ChannelInfo](t, w); len(ch.Sinks) != 0 {
		t.Fatalf("assigned channel=%+v", ch)
	}

	if w := do(t, r, http.MethodDelete, "/channels/orders/sinks/mem", ""); w.Code != http.StatusNoContent {
		t.Fatalf("detach status=%d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/channels/orders", ""); w.Code != http.StatusNoContent {
		t.Fatalf("close channel status=%d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/sinks", "")
	sinks := decode[types.SinksResponse](t, w)
	if len(sinks.Sinks) != 1 || sinks.Sinks[0].PublisherDied != 3 || sinks.Sinks[0].Subscriptions != 0 {
		t.Fatalf("sinks=%+v", sinks.Sinks)
	}
	if w := do(t, r, http.MethodDelete, "/sinks/mem", ""); w.Code != http.StatusNoContent {
		t.Fatalf("close sink status=%d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/channels", "")
	chans := decode[types.ChannelsResponse](t, w)
	if len(chans.Channels) != 3 {
		t.Fatalf("channels=%+v", chans.Channels)
	}
	st := decode[types.StatusResponse](t, do(t, r, http.MethodGet, "/status", ""))
	if st.EmittedTotal == 0 || len(st.Sinks) != 0 {
		t.Fatalf("status=%+v", st)
	}
}

func TestErrorMapping(t *testing.T) {
	svc := newTestHub(t)
	r := NewMux(svc)
	if w := do(t, r, http.MethodPost, "/channels", `{"name":"c"}`); w.Code != http.StatusCreated {
		t.Fatalf("setup status=%d", w.Code)
	}
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/channels/missing/emit", `{"name":"x"}`, http.StatusNotFound},
		{http.MethodPost, "/channels", `{"name":"c"}`, http.StatusConflict},
		{http.MethodPost, "/channels", `{"name":"bad name"}`, http.StatusBadRequest},
		{http.MethodPost, "/channels/c/emit", `{"payload":{}}`, http.StatusBadRequest},
		{http.MethodPost, "/channels/hub/emit", `{"name":"forged"}`, http.StatusBadRequest},
		{http.MethodPost, "/sinks", `{"name":"s","kind":"pigeon"}`, http.StatusBadRequest},
		{http.MethodPut, "/channels/c/sinks/ghost", "", http.StatusNotFound},
		{http.MethodDelete, "/sinks/ghost", "", http.StatusNotFound},
		{http.MethodGet, "/sinks/ghost/events", "", http.StatusNotFound},
	}
	for _, c := range cases {
		w := do(t, r, c.method, c.path, c.body)
		if w.Code != c.want {
			t.Fatalf("%s %s: status=%d want %d body=%s", c.method, c.path, w.Code, c.want, w.Body.String())
		}
		e := decode[types.ErrorResponse](t, w)
		if e.Code != c.want || e.Error == "" {
			t.Fatalf("%s %s: error body=%+v", c.method, c.path, e)
		}
	}

	_ = svc.Close()
	if w := do(t, r, http.MethodPost, "/channels/c/emit", `{"name":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed hub status=%d", w.Code)
	}
}

// failingService reports an error without a status code.
type failingService struct{ *hub.Hub }

func (failingService) CreateChannel(string, ...string) error { return errors.New("disk on fire") }

func TestGenericErrorMaps500(t *testing.T) {
	r := NewMux(failingService{newTestHub(t)})
	w := do(t, r, http.MethodPost, "/channels", `{"name":"c"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRequestValidation(t *testing.T) {
	svc := newTestHub(t)
	r := NewMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/channels", bytes.NewBufferString(`{"name":"c"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content-type status=%d", w.Code)
	}

	if w := do(t, r, http.MethodPost, "/channels", "not-json"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", w.Code)
	}

	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	big := `{"name":"c","sinks":["` + strings.Repeat("a", 128) + `"]}`
	if w := do(t, r, http.MethodPost, "/channels", big); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for too-large body, got %d", w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := newTestHub(t)
	r := NewMux(svc)
	if w := do(t, r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz=%d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz=%d", w.Code)
	}
	_ = svc.Close()
	w := do(t, r, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "closed") {
		t.Fatalf("readyz after close=%d %q", w.Code, w.Body.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	r := NewMux(newTestHub(t))
	req := httptest.NewRequest(http.MethodGet, "/channels", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}
