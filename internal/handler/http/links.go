package http

import (
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	registry *service.Registry
	log      *zap.Logger
	baseURL  string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(registry *service.Registry, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		registry: registry,
		log:      log,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	URL string `json:"url"`
}

// LinkResponse ссылка в ответах API
type LinkResponse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	BaseURL   string    `json:"base_url"`
	ShortURL  string    `json:"short_url"`
	Visits    int64     `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatsResponse статистика переходов по ссылке
type StatsResponse struct {
	Link           LinkResponse     `json:"link"`
	Clicks         int64            `json:"clicks"`
	ClicksByDevice map[string]int64 `json:"clicks_by_device"`
}

// CreateLink создает новую короткую ссылку или возвращает существующую
//
//	@Summary		Shorten a URL
//	@Description	Returns the existing link for an already shortened URL
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateLinkRequest	true	"URL to shorten"
//	@Success		201		{object}	LinkResponse		"Link created"
//	@Success		200		{object}	LinkResponse		"Link already existed"
//	@Failure		400		{object}	ErrorResponse		"Invalid URL"
//	@Failure		401		{object}	ErrorResponse		"Authentication required"
//	@Failure		422		{object}	ErrorResponse		"Page title could not be fetched"
//	@Router			/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	baseURL := h.requestBaseURL(r)

	link, created, err := h.registry.CreateLink(r.Context(), rawURL, baseURL)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, "Not a valid url", http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrTitleFetch):
		writeError(w, "Could not read the page title", http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.log.Error("failed to create link", zap.String("url", rawURL), zap.Error(err))
		writeError(w, "Failed to create link", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		userID, _ := auth.GetUserIDFromContext(r.Context())
		h.log.Info("created link", zap.String("code", link.Code), zap.Int64("user_id", userID))
	}

	writeJSON(w, h.toResponse(link), status)
}

// ListLinks возвращает все ссылки, новые первыми
//
//	@Summary	List links
//	@Tags		Links
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		LinkResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.registry.ListLinks(r.Context())
	if err != nil {
		h.log.Error("failed to list links", zap.Error(err))
		writeError(w, "Failed to retrieve links", http.StatusInternalServerError)
		return
	}

	response := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		response = append(response, h.toResponse(link))
	}

	writeJSON(w, response, http.StatusOK)
}

// GetStats возвращает статистику по коду
//
//	@Summary	Link statistics
//	@Tags		Links
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string	true	"Short code"
//	@Success	200		{object}	StatsResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/links/{code}/stats [get]
func (h *LinksHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	stats, err := h.registry.Stats(r.Context(), code)
	if errors.Is(err, repository.ErrLinkNotFound) {
		writeError(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to get link stats", zap.String("code", code), zap.Error(err))
		writeError(w, "Failed to retrieve stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, StatsResponse{
		Link:           h.toResponse(stats.Link),
		Clicks:         stats.Clicks,
		ClicksByDevice: stats.ClicksByDevice,
	}, http.StatusOK)
}

// requestBaseURL берет origin клиента, если он помещается в колонку base_url, иначе настроенный base_url
func (h *LinksHandler) requestBaseURL(r *http.Request) string {
	origin := strings.TrimRight(r.Header.Get("Origin"), "/")
	if len(origin) <= domain.MaxBaseURLLength && service.IsValidURL(origin) {
		return origin
	}
	return h.baseURL
}

func (h *LinksHandler) toResponse(link *domain.Link) LinkResponse {
	base := link.BaseURL
	if base == "" {
		base = h.baseURL
	}
	return LinkResponse{
		ID:        link.ID,
		Code:      link.Code,
		URL:       link.URL,
		Title:     link.Title,
		BaseURL:   link.BaseURL,
		ShortURL:  strings.TrimRight(base, "/") + "/" + link.Code,
		Visits:    link.Visits,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}
