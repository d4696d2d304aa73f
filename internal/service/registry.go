package service

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const maxRetries = 5

// reservedCodes совпадают с маршрутами сервера, такие коды не разрешатся в редирект
var reservedCodes = map[string]struct{}{
	"health":  {},
	"ready":   {},
	"links":   {},
	"swagger": {},
}

// IsReservedCode сообщает, занят ли код маршрутом сервера
func IsReservedCode(code string) bool {
	_, ok := reservedCodes[code]
	return ok
}

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrTitleFetch     = errors.New("failed to fetch page title")
	ErrCodeGeneration = errors.New("failed to generate unique code")
)

// TitleFetcher получает заголовок страницы по URL
type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

// CodeGenerator выдает кандидатов в короткие коды
type CodeGenerator interface {
	Generate() (string, error)
}

// Registry владеет ссылками: создание, поиск и учет переходов
type Registry struct {
	storage   repository.Storage
	generator CodeGenerator
	fetcher   TitleFetcher
	log       *zap.Logger
}

func NewRegistry(storage repository.Storage, generator CodeGenerator, fetcher TitleFetcher, log *zap.Logger) *Registry {
	return &Registry{
		storage:   storage,
		generator: generator,
		fetcher:   fetcher,
		log:       log,
	}
}

// FindByURL возвращает repository.ErrLinkNotFound, если ссылки нет
func (r *Registry) FindByURL(ctx context.Context, url string) (*domain.Link, error) {
	return r.storage.FindLinkByURL(ctx, url)
}

// FindByCode возвращает repository.ErrLinkNotFound, если ссылки нет
func (r *Registry) FindByCode(ctx context.Context, code string) (*domain.Link, error) {
	return r.storage.FindLinkByCode(ctx, code)
}

// Create сохраняет новую ссылку с visits = 0.
// Конфликт по url возвращается как ошибка, оборачивающая repository.ErrDuplicate.
// Конфликт по коду приводит к генерации нового кода.
func (r *Registry) Create(ctx context.Context, url, title, baseURL string) (*domain.Link, error) {
	if !IsValidURL(url) {
		return nil, ErrInvalidURL
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		code, err := r.generator.Generate()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCodeGeneration, err)
		}
		if IsReservedCode(code) {
			r.log.Debug("reserved short code, regenerating",
				zap.String("code", code),
				zap.Int("attempt", attempt))
			continue
		}

		link := &domain.Link{
			Code:    code,
			URL:     url,
			Title:   title,
			BaseURL: baseURL,
		}

		err = r.storage.CreateLink(ctx, link)
		if err == nil {
			r.log.Info("link created", zap.String("code", code), zap.String("url", url))
			return link, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to save link: %w", err)
		}

		// Нарушена уникальность: выясняем, чья это ссылка, url или code
		if _, findErr := r.storage.FindLinkByURL(ctx, url); findErr == nil {
			return nil, fmt.Errorf("url %s: %w", url, repository.ErrDuplicate)
		} else if !errors.Is(findErr, repository.ErrLinkNotFound) {
			return nil, fmt.Errorf("failed to check existing link: %w", findErr)
		}

		r.log.Debug("short code collision, regenerating",
			zap.String("code", code),
			zap.Int("attempt", attempt))
	}

	return nil, ErrCodeGeneration
}

// CreateLink идемпотентно сокращает URL. Второй результат сообщает, была ли создана новая ссылка.
func (r *Registry) CreateLink(ctx context.Context, url, baseURL string) (*domain.Link, bool, error) {
	if !IsValidURL(url) {
		return nil, false, ErrInvalidURL
	}

	existing, err := r.storage.FindLinkByURL(ctx, url)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrLinkNotFound) {
		return nil, false, fmt.Errorf("failed to find link: %w", err)
	}

	// Загрузка заголовка идет без блокировок и транзакций
	title, err := r.fetcher.FetchTitle(ctx, url)
	if err != nil {
		r.log.Warn("failed to fetch title", zap.String("url", url), zap.Error(err))
		return nil, false, fmt.Errorf("%w: %w", ErrTitleFetch, err)
	}

	link, err := r.Create(ctx, url, title, baseURL)
	if errors.Is(err, repository.ErrDuplicate) {
		// Параллельный запрос успел создать ту же ссылку
		existing, findErr := r.storage.FindLinkByURL(ctx, url)
		if findErr != nil {
			return nil, false, fmt.Errorf("failed to load concurrently created link: %w", findErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return link, true, nil
}

// RecordVisit сохраняет клик и атомарно увеличивает visits
func (r *Registry) RecordVisit(ctx context.Context, link *domain.Link, click *domain.Click) (*domain.Link, error) {
	updated, err := r.storage.RecordVisit(ctx, link.ID, click)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}
	return updated, nil
}

// ListLinks возвращает ссылки, новые первыми
func (r *Registry) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	links, err := r.storage.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Stats собирает статистику переходов по коду
func (r *Registry) Stats(ctx context.Context, code string) (*domain.LinkStats, error) {
	link, err := r.storage.FindLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	clicks, err := r.storage.CountClicks(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	byDevice, err := r.storage.GetClicksByDevice(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clicks by device: %w", err)
	}

	return &domain.LinkStats{
		Link:           link,
		Clicks:         clicks,
		ClicksByDevice: byDevice,
	}, nil
}
