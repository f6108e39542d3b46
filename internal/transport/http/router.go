package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/notify"
	participantHandler "rollcall/internal/participant/handler"
	"rollcall/internal/platform/middleware"
)

// NewRouter wires all public endpoints. Handlers register their own routes
// so transport wiring stays in one place without embedding business logic.
func NewRouter(
	logger *slog.Logger,
	participants *participantHandler.Handler,
	events *notify.SSEHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)

	participants.Register(r)
	events.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
