package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once from DISPATCHD_HTTP_LOG.
var defaultLogLevel = parseLevel(os.Getenv("DISPATCHD_HTTP_LOG"))

// SetDefaultLogLevel overrides the request log level used when a request
// carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// RequestLogger logs one line per request at the level chosen by
// requestLogLevel. Server errors are logged at LevelError and above.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if lvl == LevelOff {
			next.ServeHTTP(w, r)
			return
		}
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		if sr.status < http.StatusInternalServerError && lvl < LevelInfo {
			return
		}
		dur := time.Since(start)
		rid := middleware.GetReqID(r.Context())
		if zlog == nil {
			log.Printf("http %s %s status=%d dur=%s request_id=%s", r.Method, r.URL.Path, sr.status, dur, rid)
			return
		}
		ev := zlog.Info()
		if sr.status >= http.StatusInternalServerError {
			ev = zlog.Error()
		}
		ev = ev.Str("method", r.Method).Str("path", r.URL.Path).Int("status", sr.status).Dur("dur", dur)
		if rid != "" {
			ev = ev.Str("request_id", rid)
		}
		ev.Msg("http request")
	})
}

// debugEvent logs an emitted event when the request asked for debug logging.
func debugEvent(r *http.Request, channel, name string, payload map[string]any) {
	if requestLogLevel(r) < LevelDebug {
		return
	}
	if zlog == nil {
		log.Printf("emit> %s/%s %v", channel, name, payload)
		return
	}
	ev := zlog.Debug().Str("channel", channel).Str("event", name).Interface("payload", payload)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Msg("emit")
}
