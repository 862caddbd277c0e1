package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router bundles the handlers served by the backend.
type Router struct {
	Version     string
	Sessions    *SessionMiddleware
	Generate    *GenerateHandler
	Generations *GenerationsHandler
	Session     *SessionHandler
}

// Build registers all routes.
func (rt Router) Build() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", NewHealthHandler(rt.Version)).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rt.Sessions.Handler)

	apiRouter.HandleFunc("/generate", rt.Generate.Generate).Methods(http.MethodPost)

	apiRouter.HandleFunc("/generations", rt.Generations.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/generations/{id}", rt.Generations.GetByID).Methods(http.MethodGet)
	apiRouter.HandleFunc("/generations/{id}/download", rt.Generations.Download).Methods(http.MethodGet)
	apiRouter.HandleFunc("/generations/{id}", rt.Generations.Delete).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/session", rt.Session.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/session", rt.Session.Update).Methods(http.MethodPut)
	apiRouter.HandleFunc("/session", rt.Session.Clear).Methods(http.MethodDelete)

	return router
}
