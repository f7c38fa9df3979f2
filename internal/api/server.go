package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/watches", func(r chi.Router) {
		r.Post("/", handler.CreateWatch)
		r.Get("/", handler.ListWatches)
		r.Get("/{watchId}", handler.GetWatch)
		r.Get("/{watchId}/txs", handler.GetWatchTxs)
		r.Get("/{watchId}/utxos", handler.GetWatchUtxos)
	})

	return &Server{Router: r}
}
