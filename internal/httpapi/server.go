package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dispatchd/internal/hub"
	"dispatchd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Channels() []types.ChannelInfo
	CreateChannel(name string, sinks ...string) error
	CloneChannel(src, dst string) error
	AssignChannel(dst, src string) error
	CloseChannel(name string) error
	Emit(channel string, ev types.Event) (types.EmitResponse, error)

	Sinks() []types.SinkInfo
	CreateSink(spec hub.SinkSpec) error
	CloseSink(name string) error
	Attach(channel, sink string) error
	Detach(channel, sink string) error
	SinkEvents(name string) ([]types.Event, error)

	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Route("/channels", func(r chi.Router) {
		r.Get("/", h.listChannels)
		r.Post("/", h.createChannel)
		r.Route("/{name}", func(r chi.Router) {
			r.Delete("/", h.closeChannel)
			r.Post("/clone", h.cloneChannel)
			r.Put("/assign", h.assignChannel)
			r.Post("/emit", h.emit)
			r.Put("/sinks/{sink}", h.attach)
			r.Delete("/sinks/{sink}", h.detach)
		})
	})
	r.Route("/sinks", func(r chi.Router) {
		r.Get("/", h.listSinks)
		r.Post("/", h.createSink)
		r.Delete("/{name}", h.closeSink)
		r.Get("/{name}/events", h.sinkEvents)
	})
	r.Get("/status", h.status)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("closed"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}
