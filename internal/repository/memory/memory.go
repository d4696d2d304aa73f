package memory

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// MemStorage хранит ссылки и клики в памяти процесса.
// Все методы возвращают копии, внутренние указатели наружу не отдаются.
type MemStorage struct {
	mu           sync.RWMutex
	linksByID    map[int64]*domain.Link
	linksByCode  map[string]int64
	linksByURL   map[string]int64
	clicks       map[int64]*domain.Click
	linkCounter  int64
	clickCounter int64
	now          func() time.Time
}

func New() *MemStorage {
	return &MemStorage{
		linksByID:   make(map[int64]*domain.Link),
		linksByCode: make(map[string]int64),
		linksByURL:  make(map[string]int64),
		clicks:      make(map[int64]*domain.Click),
		now:         time.Now,
	}
}

// --- Link Methods ---

func (s *MemStorage) FindLinkByURL(_ context.Context, url string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.linksByURL[url]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(s.linksByID[id]), nil
}

func (s *MemStorage) FindLinkByCode(_ context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.linksByCode[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return copyLink(s.linksByID[id]), nil
}

func (s *MemStorage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Те же ограничения уникальности, что и индексы в базе
	if _, exists := s.linksByURL[link.URL]; exists {
		return repository.ErrDuplicate
	}
	if _, exists := s.linksByCode[link.Code]; exists {
		return repository.ErrDuplicate
	}

	s.linkCounter++
	now := s.now()
	link.ID = s.linkCounter
	link.Visits = 0
	link.CreatedAt = now
	link.UpdatedAt = now

	s.linksByID[link.ID] = copyLink(link)
	s.linksByURL[link.URL] = link.ID
	s.linksByCode[link.Code] = link.ID
	return nil
}

func (s *MemStorage) ListLinks(_ context.Context) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := make([]*domain.Link, 0, len(s.linksByID))
	for _, link := range s.linksByID {
		links = append(links, copyLink(link))
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID > links[j].ID
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (s *MemStorage) RecordVisit(_ context.Context, linkID int64, click *domain.Click) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.linksByID[linkID]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}

	s.clickCounter++
	click.ID = s.clickCounter
	click.LinkID = linkID
	if click.ClickedAt.IsZero() {
		click.ClickedAt = s.now()
	}
	stored := *click
	s.clicks[click.ID] = &stored

	link.Visits++
	link.UpdatedAt = s.now()
	return copyLink(link), nil
}

// --- Click Methods ---

func (s *MemStorage) CountClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			count++
		}
	}
	return count, nil
}

func (s *MemStorage) GetClicksByDevice(_ context.Context, linkID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clicksByDevice := make(map[string]int64)
	for _, click := range s.clicks {
		if click.LinkID == linkID {
			clicksByDevice[click.GetDeviceType()]++
		}
	}
	return clicksByDevice, nil
}

func (s *MemStorage) UpdateClickDevice(_ context.Context, clickID int64, deviceType, browser, os string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	click, ok := s.clicks[clickID]
	if !ok {
		return repository.ErrClickNotFound
	}
	click.DeviceType = deviceType
	click.Browser = browser
	click.OS = os
	return nil
}

func (s *MemStorage) Ping(_ context.Context) error {
	return nil
}

func copyLink(link *domain.Link) *domain.Link {
	c := *link
	c.Clicks = nil
	return &c
}
