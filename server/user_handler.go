package server

import (
	"net/http"

	"audiochan/core/audio"

	"github.com/gorilla/mux"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), CallerID(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UserAudios(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if _, err := h.users.GetProfile(r.Context(), 0, username); err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.audios.List(r.Context(), CallerID(r.Context()), audio.ListQuery{
		Username: username,
		Page:     queryInt(r, "page"),
		Size:     queryInt(r, "size"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.Followers(r.Context(), mux.Vars(r)["username"], queryInt(r, "page"), queryInt(r, "size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) Followings(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.Followings(r.Context(), mux.Vars(r)["username"], queryInt(r, "page"), queryInt(r, "size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Follow handles GET (status), PUT (follow) and DELETE (unfollow).
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	caller := CallerID(r.Context())
	var (
		state bool
		err   error
	)
	switch r.Method {
	case http.MethodGet:
		state, err = h.users.IsFollowing(r.Context(), caller, username)
	default:
		state, err = h.users.SetFollow(r.Context(), caller, username, r.Method == http.MethodPut)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
}

func (h *Handler) UpdateMyPicture(w http.ResponseWriter, r *http.Request) {
	var req pictureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	url, err := h.users.UpdatePicture(r.Context(), CallerID(r.Context()), req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: url})
}
