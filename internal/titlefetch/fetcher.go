// Package titlefetch загружает страницу по URL и извлекает ее <title>.
package titlefetch

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	ErrNoTitle          = errors.New("page has no title")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Fetcher получает заголовок удаленной страницы с таймаутом и повтором
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	retries      int
	userAgent    string
	maxBodyBytes int64
	log          *zap.Logger
}

// New создает Fetcher. client может быть nil, тогда используется http.Client без общего таймаута:
// время каждой попытки ограничивает контекст.
func New(cfg *config.TitleFetch, client *http.Client, log *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Fetcher{
		client:       client,
		timeout:      cfg.Timeout,
		retries:      cfg.Retries,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: maxBody,
		log:          log,
	}
}

// FetchTitle возвращает содержимое <title> со схлопнутыми пробелами
func (f *Fetcher) FetchTitle(ctx context.Context, rawURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		title, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return title, nil
		}
		lastErr = err

		// Отсутствие заголовка не исправится повтором
		if errors.Is(err, ErrNoTitle) || ctx.Err() != nil {
			break
		}

		f.log.Warn("title fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return "", lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return ExtractTitle(io.LimitReader(resp.Body, f.maxBodyBytes))
}

// ExtractTitle читает HTML и возвращает текст первого <title>
func ExtractTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if inTitle {
					return finishTitle(b.String())
				}
				return "", ErrNoTitle
			}
			return "", fmt.Errorf("failed to parse html: %w", z.Err())
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && string(name) == "title" {
				return finishTitle(b.String())
			}
		}
	}
}

func finishTitle(raw string) (string, error) {
	title := strings.Join(strings.Fields(raw), " ")
	if title == "" {
		return "", ErrNoTitle
	}
	// Обрезаем по границе символа под размер колонки title
	if runes := []rune(title); len(runes) > domain.MaxTitleLength {
		title = strings.TrimSpace(string(runes[:domain.MaxTitleLength]))
	}
	return title, nil
}
