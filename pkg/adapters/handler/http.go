package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

type HTTPHandler struct {
	service ports.BookmarkService
	baseURL string
	log     zerolog.Logger
}

func NewHTTPHandler(service ports.BookmarkService, baseURL string, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// CreateBookmarkRequest payload
type CreateBookmarkRequest struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// UpdateBookmarkRequest payload
type UpdateBookmarkRequest struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

type bookmarkResponse struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	ShortURL  string    `json:"short_url"`
	ShortCode string    `json:"short_code"`
	Visits    int64     `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *HTTPHandler) bookmarkJSON(b *domain.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		ID:        b.ID,
		URL:       b.URL,
		Body:      b.Body,
		ShortURL:  h.baseURL + "/" + b.ShortCode,
		ShortCode: b.ShortCode,
		Visits:    b.Visits,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// Create Bookmark
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	bookmark, err := h.service.Create(r.Context(), userID, req.URL, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.bookmarkJSON(bookmark))
}

// List returns one page of the caller's bookmarks plus pagination metadata.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.service.List(r.Context(), userID, page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}

	data := make([]bookmarkResponse, 0, len(result.Items))
	for i := range result.Items {
		data = append(data, h.bookmarkJSON(&result.Items[i]))
	}

	meta := map[string]interface{}{
		"page":     result.Page,
		"pages":    result.Pages,
		"total":    result.Total,
		"has_next": result.HasNext(),
		"has_prev": result.HasPrev(),
		"next_num": nil,
		"prev_num": nil,
	}
	if result.HasNext() {
		meta["next_num"] = result.Page + 1
	}
	if result.HasPrev() {
		meta["prev_num"] = result.Page - 1
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": data,
		"meta":    meta,
	})
}

// Get one bookmark by id, owner-scoped.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
		return
	}

	bookmark, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.bookmarkJSON(bookmark))
}

// Update url/body of a bookmark; short code and owner are immutable.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
		return
	}

	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	bookmark, err := h.service.Update(r.Context(), userID, id, req.URL, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.bookmarkJSON(bookmark))
}

// Delete Bookmark
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats returns visit counts for all of the caller's bookmarks.
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	type statEntry struct {
		ID     int64  `json:"id"`
		URL    string `json:"url"`
		Short  string `json:"short"`
		Visits int64  `json:"visits"`
	}
	entries := make([]statEntry, 0, len(stats))
	for _, s := range stats {
		entries = append(entries, statEntry{
			ID:     s.ID,
			URL:    s.URL,
			Short:  h.baseURL + "/" + s.ShortCode,
			Visits: s.Visits,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": entries})
}

// Redirect resolves a short code to its target URL. The visit is committed
// before the 302 goes out; a redirect the counter missed cannot happen.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	targetURL, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		if domain.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"Error": "Not found"})
			return
		}
		h.log.Error().Err(err).Str("code", code).Msg("redirect failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"Error": "Issue on server occurred"})
		return
	}

	http.Redirect(w, r, targetURL, http.StatusFound)
}
