package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every endpoint. gatherer may be nil to use the
// default registry.
func NewRouter(h *Handler, tokens TokenParser, gatherer prometheus.Gatherer) *mux.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	authed := func(fn http.HandlerFunc) http.HandlerFunc { return requireAuth(tokens, fn) }
	public := func(fn http.HandlerFunc) http.HandlerFunc { return optionalAuth(tokens, fn) }

	router := mux.NewRouter()
	router.Use(corsMiddleware, loggingMiddleware)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/upload", authed(h.GetUploadURL)).Methods(http.MethodPost)

	api.HandleFunc("/audios", public(h.ListAudios)).Methods(http.MethodGet)
	api.HandleFunc("/audios", authed(h.CreateAudio)).Methods(http.MethodPost)
	api.HandleFunc("/audios/random", public(h.RandomAudio)).Methods(http.MethodGet)
	api.HandleFunc("/audios/{id:[0-9]+}", public(h.GetAudio)).Methods(http.MethodGet)
	api.HandleFunc("/audios/{id:[0-9]+}", authed(h.UpdateAudio)).Methods(http.MethodPut)
	api.HandleFunc("/audios/{id:[0-9]+}", authed(h.DeleteAudio)).Methods(http.MethodDelete)
	api.HandleFunc("/audios/{id:[0-9]+}/picture", authed(h.UpdateAudioPicture)).Methods(http.MethodPatch)
	api.HandleFunc("/audios/{id:[0-9]+}/favorite", authed(h.Favorite)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	api.HandleFunc("/me/feed", authed(h.Feed)).Methods(http.MethodGet)
	api.HandleFunc("/me/favorites", authed(h.MyFavorites)).Methods(http.MethodGet)
	api.HandleFunc("/me/picture", authed(h.UpdateMyPicture)).Methods(http.MethodPatch)
	api.HandleFunc("/me/followings/{username}", authed(h.Follow)).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	api.HandleFunc("/users/{username}", public(h.GetProfile)).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/audios", public(h.UserAudios)).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/followers", public(h.Followers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/followings", public(h.Followings)).Methods(http.MethodGet)

	api.HandleFunc("/search/audios", public(h.ListAudios)).Methods(http.MethodGet)
	api.HandleFunc("/search/users", public(h.SearchUsers)).Methods(http.MethodGet)

	api.HandleFunc("/genres", public(h.ListGenres)).Methods(http.MethodGet)
	api.HandleFunc("/genres/{genre}", public(h.GetGenre)).Methods(http.MethodGet)

	// Preflight requests only need the CORS headers added by the middleware.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return router
}
