package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a JSON 500 so no stack trace reaches the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			if errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			zerolog.Ctx(r.Context()).Error().
				Err(err).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			writeJSONError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
		}()

		next.ServeHTTP(w, r)
	})
}
