package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5/middleware"
)

// Recoverer is chi's Recoverer with a JSON body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			slog.Error("Panic recovered",
				"panic", rvr,
				"request_id", middleware.GetReqID(r.Context()),
				"path", r.URL.Path,
				"stack", string(stack))

			if r.Header.Get("Connection") != "Upgrade" {
				response.ServerError(w, fmt.Errorf("panic: %v", rvr), stack)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
