package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// requestLogger emits one "request received" entry before a request is
// served and one "response sent" entry after, mirroring what operators
// grep for. The response time is reported in whole milliseconds.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"ip":     GetClientIP(r),
			"URI":    r.RequestURI,
			"method": r.Method,
		}).Info("request received")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		var contentType interface{}
		if ct := ww.Header().Get("Content-Type"); ct != "" {
			contentType = ct
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.WithFields(log.Fields{
			"response_time": elapsed.Milliseconds(),
			"code":          status,
			"content_type":  contentType,
		}).Info("response sent")

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			RecordRequest(r.Method, rctx.RoutePattern(), status, elapsed)
		}
	})
}

// recoverer converts handler panics into the standard JSON 500 envelope
// instead of a dropped connection. http.ErrAbortHandler passes through
// untouched so deliberate aborts keep their net/http meaning.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			log.WithFields(log.Fields{
				"code":  http.StatusInternalServerError,
				"text":  "handler panic",
				"where": r.URL.Path,
				"panic": rvr,
				"stack": string(debug.Stack()),
			}).Error("error")
			writeError(w, http.StatusInternalServerError, codeInternalError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// logServerError records a failure that turns into a 500 for the client.
func logServerError(r *http.Request, err error) {
	log.WithFields(log.Fields{
		"code":  http.StatusInternalServerError,
		"text":  err.Error(),
		"where": r.URL.Path,
	}).Error("error")
}
