package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AccountRouteRegistrar interface {
	RegisterRoutes(r *mux.Router, authMiddleware mux.MiddlewareFunc)
}

// New builds the operational listener. Account routes are skipped when
// accountController is nil; authMiddleware may be nil to leave them open.
func New(accountController AccountRouteRegistrar, authMiddleware mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	registerSwaggerRoutes(r)

	if accountController != nil {
		accountController.RegisterRoutes(r, authMiddleware)
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
