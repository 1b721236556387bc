package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// logRequest emits one line per completed mutating request.
func logRequest(r *http.Request, op, model string, status int, start time.Time, err error) {
	if zlog == nil {
		if err != nil {
			log.Printf("%s model=%s status=%d dur=%s err=%v", op, model, status, time.Since(start), err)
		} else {
			log.Printf("%s model=%s status=%d dur=%s", op, model, status, time.Since(start))
		}
		return
	}
	ev := zlog.Info().Str("op", op).Int("status", status).Dur("dur", time.Since(start))
	if model != "" {
		ev = ev.Str("model", model)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(op + " end")
}
