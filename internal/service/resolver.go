package service

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// VisitInfo данные запроса, сохраняемые вместе с кликом
type VisitInfo struct {
	IPAddress string
	UserAgent string
	Referer   string
	At        time.Time
}

// Redirect результат разрешения кода. Found == false означает неизвестный код.
type Redirect struct {
	URL    string
	Found  bool
	Visits int64
}

// cachedLink неизменяемая часть ссылки
type cachedLink struct {
	ID  int64
	URL string
}

// Resolver превращает короткий код в адрес перехода и учитывает визит
type Resolver struct {
	registry  *Registry
	processor analytics.ProcessorInterface
	cache     *cache.Cache
	log       *zap.Logger
}

// NewResolver создает резолвер. processor может быть nil, тогда клики не обогащаются.
// cacheTTL <= 0 отключает кэш.
func NewResolver(registry *Registry, processor analytics.ProcessorInterface, cacheTTL time.Duration, log *zap.Logger) *Resolver {
	var c *cache.Cache
	if cacheTTL > 0 {
		c = cache.New(cacheTTL, 2*cacheTTL)
	}
	return &Resolver{
		registry:  registry,
		processor: processor,
		cache:     c,
		log:       log,
	}
}

// Resolve ищет ссылку, записывает клик и увеличивает visits.
// Для неизвестного кода возвращает Redirect{Found: false} и nil.
func (r *Resolver) Resolve(ctx context.Context, code string, visit VisitInfo) (Redirect, error) {
	entry, found, err := r.lookup(ctx, code)
	if err != nil {
		return Redirect{}, err
	}
	if !found {
		return Redirect{}, nil
	}

	click := &domain.Click{
		IPAddress: visit.IPAddress,
		UserAgent: visit.UserAgent,
		Referer:   visit.Referer,
		ClickedAt: visit.At,
	}

	updated, err := r.registry.RecordVisit(ctx, &domain.Link{ID: entry.ID}, click)
	if errors.Is(err, repository.ErrLinkNotFound) {
		r.forget(code)
		return Redirect{}, nil
	}
	if err != nil {
		return Redirect{}, err
	}

	r.submit(click)

	return Redirect{URL: entry.URL, Found: true, Visits: updated.Visits}, nil
}

func (r *Resolver) lookup(ctx context.Context, code string) (cachedLink, bool, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(code); ok {
			return v.(cachedLink), true, nil
		}
	}

	link, err := r.registry.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrLinkNotFound) {
		return cachedLink{}, false, nil
	}
	if err != nil {
		return cachedLink{}, false, fmt.Errorf("failed to find link: %w", err)
	}

	entry := cachedLink{ID: link.ID, URL: link.URL}
	if r.cache != nil {
		r.cache.SetDefault(code, entry)
	}
	return entry, true, nil
}

func (r *Resolver) forget(code string) {
	if r.cache != nil {
		r.cache.Delete(code)
	}
}

func (r *Resolver) submit(click *domain.Click) {
	if r.processor == nil {
		return
	}
	err := r.processor.SubmitClick(&analytics.ClickData{ClickID: click.ID, UserAgent: click.UserAgent})
	if err != nil {
		r.log.Warn("click not queued for enrichment", zap.Int64("click_id", click.ID), zap.Error(err))
	}
}
