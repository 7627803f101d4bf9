// Package recoverer turns handler panics into a structured 500 response.
package recoverer

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/expiring-url-shortener/pkg/middleware"
	"github.com/vadimbarashkov/expiring-url-shortener/pkg/response"
)

// New returns a middleware that logs a recovered panic with its stack and
// replies with the generic server error. http.ErrAbortHandler is re-raised.
func New(logger *slog.Logger) middleware.Middleware {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					reqID := chimw.GetReqID(r.Context())

					logger.Error(
						"something went wrong, panic occurred",
						slog.String("op", op),
						slog.Any("err", rvr),
						slog.String("request_id", reqID),
						slog.String("stack", string(debug.Stack())),
					)

					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.ServerErrorResponse.WithRequestID(reqID))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
