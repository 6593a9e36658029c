package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sindrigils/restfulapi-anime/internal/catalog"
	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

// defaultLimit is the result cap applied when the caller does not pass one.
const defaultLimit = 5

// Handler serves the anime endpoints.
type Handler struct {
	Catalog *catalog.Service
}

// RegisterRoutes registers the anime routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /anime/studio/{studio}", h.QueryByStudio)
	mux.HandleFunc("GET /anime/genres/{genre}", h.QueryByGenre)
	mux.HandleFunc("GET /anime/name/{name}", h.QueryByName)
	mux.HandleFunc("GET /anime/rank/{rank}", h.QueryByRank)
	mux.HandleFunc("GET /anime/rating/{rating}", h.QueryByMinRating)

	mux.HandleFunc("POST /anime", h.CreateAnime)
	mux.HandleFunc("PUT /anime/{id}", h.UpdateAnime)
	mux.HandleFunc("DELETE /anime/{id}", h.DeleteAnime)
}

// parseLimit reads the optional ?limit= parameter; minimum 1, default 5.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, false
	}
	return limit, true
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, q domain.Query, notFoundMsg string) {
	payload, err := h.Catalog.Resolve(r.Context(), q)
	if err != nil {
		writeError(w, err, notFoundMsg)
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

// QueryByStudio handles GET /anime/studio/{studio}
func (h *Handler) QueryByStudio(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
		return
	}
	q := domain.QueryByStudio(r.PathValue("studio"), limit)
	h.resolve(w, r, q, "no anime exists by this studio")
}

// QueryByGenre handles GET /anime/genres/{genre}
func (h *Handler) QueryByGenre(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
		return
	}
	q := domain.QueryByGenre(domain.Genre(r.PathValue("genre")), limit)
	h.resolve(w, r, q, "no anime exists with this genre")
}

// QueryByName handles GET /anime/name/{name}
func (h *Handler) QueryByName(w http.ResponseWriter, r *http.Request) {
	q := domain.QueryByName(r.PathValue("name"))
	h.resolve(w, r, q, "no anime exists with this name")
}

// QueryByRank handles GET /anime/rank/{rank}
func (h *Handler) QueryByRank(w http.ResponseWriter, r *http.Request) {
	rank, err := strconv.Atoi(r.PathValue("rank"))
	if err != nil || rank < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "rank must be a positive integer"})
		return
	}
	h.resolve(w, r, domain.QueryByRank(rank), "an anime with this rank does not exist")
}

// QueryByMinRating handles GET /anime/rating/{rating} — matches every anime
// rated at or above the threshold.
func (h *Handler) QueryByMinRating(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.ParseFloat(r.PathValue("rating"), 64)
	if err != nil || rating < 0 || rating > 5 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "rating must be between 0 and 5"})
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
		return
	}
	h.resolve(w, r, domain.QueryByMinRating(rating, limit), "no anime exists with this rating or higher")
}

// CreateAnime handles POST /anime
func (h *Handler) CreateAnime(w http.ResponseWriter, r *http.Request) {
	var a domain.Anime
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON payload"})
		return
	}
	a.ID = ""

	if err := h.Catalog.Create(r.Context(), &a); err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "anime created successfully",
		"anime_id": a.ID,
	})
}

// UpdateAnime handles PUT /anime/{id}
func (h *Handler) UpdateAnime(w http.ResponseWriter, r *http.Request) {
	var upd domain.AnimeUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON payload"})
		return
	}

	if err := h.Catalog.Update(r.Context(), r.PathValue("id"), &upd); err != nil {
		writeError(w, err, "no anime with this id exists")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAnime handles DELETE /anime/{id}
func (h *Handler) DeleteAnime(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "this id does not exist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
