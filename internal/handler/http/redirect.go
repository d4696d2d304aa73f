package http

import (
	"Shortly-Backend/internal/service"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	resolver *service.Resolver
	log      *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(resolver *service.Resolver, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		log:      log,
	}
}

// HandleRedirect переходит по короткому коду
//
//	@Summary		Follow a short link
//	@Description	Unknown codes redirect to the index page
//	@Tags			Redirect
//	@Param			code	path	string	true	"Short code"
//	@Success		302
//	@Router			/{code} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	redirect, err := h.resolver.Resolve(r.Context(), code, service.VisitInfo{
		IPAddress: extractIPAddress(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		At:        time.Now(),
	})
	if err != nil {
		h.log.Error("failed to process redirect", zap.String("code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !redirect.Found {
		h.log.Debug("code not found", zap.String("code", code))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.log.Debug("successful redirect",
		zap.String("code", code),
		zap.String("url", redirect.URL),
		zap.Int64("visits", redirect.Visits))

	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// X-Forwarded-For может содержать список IP через запятую
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
