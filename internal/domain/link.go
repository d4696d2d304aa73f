package domain

import "time"

// Ограничения длины колонок links
const (
	MaxTitleLength   = 512
	MaxBaseURLLength = 255
)

// Link представляет сокращенную ссылку
type Link struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Code      string    `gorm:"column:code;size:32;uniqueIndex:idx_links_code;not null" json:"code"`
	URL       string    `gorm:"column:url;size:2048;uniqueIndex:idx_links_url;not null" json:"url"`
	Title     string    `gorm:"column:title;size:512;not null;default:''" json:"title"`
	BaseURL   string    `gorm:"column:base_url;size:255" json:"base_url,omitempty"`
	Visits    int64     `gorm:"column:visits;not null;default:0" json:"visits"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Clicks []Click `gorm:"foreignKey:LinkID" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// LinkStats агрегированная статистика по ссылке
type LinkStats struct {
	Link           *Link            `json:"link"`
	Clicks         int64            `json:"clicks"`
	ClicksByDevice map[string]int64 `json:"clicks_by_device"`
}
