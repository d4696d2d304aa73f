package repository

import (
	"Shortly-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrClickNotFound = errors.New("click not found")
	// ErrDuplicate возвращается при нарушении уникальности url или code
	ErrDuplicate = errors.New("link already exists")
)

type Storage interface {
	// Link methods
	FindLinkByURL(ctx context.Context, url string) (*domain.Link, error)
	FindLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	CreateLink(ctx context.Context, link *domain.Link) error
	ListLinks(ctx context.Context) ([]*domain.Link, error)

	// RecordVisit сохраняет клик и увеличивает счетчик visits в одной транзакции.
	// Заполняет click.ID и возвращает обновленную ссылку.
	RecordVisit(ctx context.Context, linkID int64, click *domain.Click) (*domain.Link, error)

	// Click analytics methods
	CountClicks(ctx context.Context, linkID int64) (int64, error)
	GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error)
	UpdateClickDevice(ctx context.Context, clickID int64, deviceType, browser, os string) error

	Ping(ctx context.Context) error
}
