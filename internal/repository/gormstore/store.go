package gormstore

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// uniqueViolation код ошибки PostgreSQL при нарушении уникального индекса
const uniqueViolation = "23505"

// Storage реализует интерфейс repository.Storage поверх GORM (PostgreSQL или SQLite)
type Storage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр GORM storage
func New(db *gorm.DB, log *zap.Logger) *Storage {
	return &Storage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

// FindLinkByURL ищет ссылку по исходному URL
func (s *Storage) FindLinkByURL(ctx context.Context, url string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("url = ?", url).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to find link by url", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return &link, nil
}

// FindLinkByCode ищет ссылку по короткому коду
func (s *Storage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to find link by code", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return &link, nil
}

// CreateLink сохраняет новую ссылку. Уникальность url и code обеспечивают индексы,
// нарушение возвращается как repository.ErrDuplicate.
func (s *Storage) CreateLink(ctx context.Context, link *domain.Link) error {
	link.Visits = 0

	if err := s.db.WithContext(ctx).Omit("Clicks").Create(link).Error; err != nil {
		if isDuplicateErr(err) {
			return repository.ErrDuplicate
		}
		s.log.Error("failed to save link", zap.String("code", link.Code), zap.Error(err))
		return fmt.Errorf("failed to save link: %w", err)
	}

	s.log.Info("saved new link", zap.String("code", link.Code), zap.Int64("link_id", link.ID))
	return nil
}

// ListLinks возвращает все ссылки, новые первыми
func (s *Storage) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list links", zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// RecordVisit увеличивает visits и записывает клик в одной транзакции
func (s *Storage) RecordVisit(ctx context.Context, linkID int64, click *domain.Click) (*domain.Link, error) {
	// Начинаем транзакцию
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Инкремент выполняется в самой базе, без чтения старого значения
	result := tx.Model(&domain.Link{}).
		Where("id = ?", linkID).
		UpdateColumns(map[string]interface{}{
			"visits":     gorm.Expr("visits + ?", 1),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		tx.Rollback()
		s.log.Error("failed to increment visits", zap.Int64("link_id", linkID), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to increment visits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, repository.ErrLinkNotFound
	}

	click.ID = 0
	click.LinkID = linkID
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	if err := tx.Create(click).Error; err != nil {
		tx.Rollback()
		s.log.Error("failed to create click record", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to create click: %w", err)
	}

	var link domain.Link
	if err := tx.Where("id = ?", linkID).First(&link).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to reload link: %w", err)
	}

	// Коммитим транзакцию
	if err := tx.Commit().Error; err != nil {
		s.log.Error("failed to commit visit transaction", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &link, nil
}

// --- Click Methods ---

// CountClicks возвращает количество кликов по ссылке
func (s *Storage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Click{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to count clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// GetClicksByDevice возвращает статистику кликов по типам устройств для ссылки
func (s *Storage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	var results []struct {
		DeviceType string `gorm:"column:device_type"`
		Count      int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).
		Model(&domain.Click{}).
		Select("device_type, count(*) as count").
		Where("link_id = ?", linkID).
		Group("device_type").
		Find(&results).Error

	if err != nil {
		s.log.Error("failed to get clicks by device", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, fmt.Errorf("failed to get clicks by device: %w", err)
	}

	clicksByDevice := make(map[string]int64)
	for _, result := range results {
		deviceType := result.DeviceType
		if deviceType == "" {
			deviceType = "unknown"
		}
		clicksByDevice[deviceType] += result.Count
	}

	return clicksByDevice, nil
}

// UpdateClickDevice сохраняет результат разбора User-Agent
func (s *Storage) UpdateClickDevice(ctx context.Context, clickID int64, deviceType, browser, os string) error {
	result := s.db.WithContext(ctx).Model(&domain.Click{}).
		Where("id = ?", clickID).
		Updates(map[string]interface{}{
			"device_type": deviceType,
			"browser":     browser,
			"os":          os,
		})
	if result.Error != nil {
		s.log.Error("failed to update click device", zap.Int64("click_id", clickID), zap.Error(result.Error))
		return fmt.Errorf("failed to update click device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrClickNotFound
	}
	return nil
}

// Ping проверяет доступность базы
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicateErr распознает нарушение уникальности у PostgreSQL и SQLite
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
