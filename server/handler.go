package server

import (
	"net/http"
	"strconv"

	"audiochan/core/audio"
	"audiochan/core/genre"
	"audiochan/core/result"
	"audiochan/core/tag"
	"audiochan/core/upload"
	"audiochan/core/user"

	"github.com/gorilla/mux"
)

// Handler adapts the core services to HTTP.
type Handler struct {
	audios  *audio.Service
	users   *user.Service
	genres  *genre.Service
	uploads *upload.Issuer
}

func NewHandler(audios *audio.Service, users *user.Service, genres *genre.Service, uploads *upload.Issuer) *Handler {
	return &Handler{audios: audios, users: users, genres: genres, uploads: uploads}
}

type uploadURLRequest struct {
	FileName string `json:"fileName"`
}

type pictureRequest struct {
	Data string `json:"data"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type stateResponse struct {
	State bool `json:"state"`
}

func audioID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, result.NotFound("")
	}
	return id, nil
}

// GetUploadURL issues a presigned upload URL.
func (h *Handler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.uploads.GetUploadURL(r.Context(), CallerID(r.Context()), req.FileName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) CreateAudio(w http.ResponseWriter, r *http.Request) {
	var req audio.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.audios.Create(r.Context(), CallerID(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ListAudios also serves title search through the q parameter.
func (h *Handler) ListAudios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.audios.List(r.Context(), CallerID(r.Context()), audio.ListQuery{
		Q:        q.Get("q"),
		Username: q.Get("username"),
		Genre:    q.Get("genre"),
		Tags:     tag.Split(q.Get("tags")),
		Sort:     q.Get("sort"),
		Page:     queryInt(r, "page"),
		Size:     queryInt(r, "size"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) RandomAudio(w http.ResponseWriter, r *http.Request) {
	view, err := h.audios.Random(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	id, err := audioID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.audios.Get(r.Context(), CallerID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateAudio(w http.ResponseWriter, r *http.Request) {
	id, err := audioID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req audio.UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.audios.Update(r.Context(), CallerID(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	id, err := audioID(r)
	if err == nil {
		err = h.audios.Delete(r.Context(), CallerID(r.Context()), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateAudioPicture(w http.ResponseWriter, r *http.Request) {
	id, err := audioID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req pictureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	url, err := h.audios.UpdatePicture(r.Context(), CallerID(r.Context()), id, req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: url})
}

// Favorite handles GET (status), PUT (favorite) and DELETE (unfavorite).
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := audioID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller := CallerID(r.Context())
	var state bool
	switch r.Method {
	case http.MethodGet:
		state, err = h.audios.IsFavorited(r.Context(), caller, id)
	default:
		state, err = h.audios.SetFavorite(r.Context(), caller, id, r.Method == http.MethodPut)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.audios.Feed(r.Context(), CallerID(r.Context()), queryInt(r, "page"), queryInt(r, "size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) MyFavorites(w http.ResponseWriter, r *http.Request) {
	page, err := h.audios.ListFavorites(r.Context(), CallerID(r.Context()), queryInt(r, "page"), queryInt(r, "size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListGenres sorts by name, or by audio count with sort=popularity.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	var (
		genres interface{}
		err    error
	)
	if genre.ParseSort(r.URL.Query().Get("sort")) == genre.SortPopularity {
		genres, err = h.genres.Popular(r.Context())
	} else {
		genres, err = h.genres.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	g, err := h.genres.Lookup(r.Context(), mux.Vars(r)["genre"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
