package domain

import "time"

// Click представляет один успешный переход по короткой ссылке.
// Поля устройства заполняются асинхронно после разбора User-Agent.
type Click struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	LinkID     int64     `gorm:"column:link_id;not null;index" json:"link_id"`
	IPAddress  string    `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent  string    `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referer    string    `gorm:"column:referer;size:500" json:"referer,omitempty"`
	DeviceType string    `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Browser    string    `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         string    `gorm:"column:os;size:50" json:"os,omitempty"`
	ClickedAt  time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`
}

// TableName возвращает название таблицы для GORM
func (Click) TableName() string {
	return "clicks"
}

// GetDeviceType возвращает тип устройства или "unknown", если клик еще не обработан
func (c *Click) GetDeviceType() string {
	if c.DeviceType != "" {
		return c.DeviceType
	}
	return "unknown"
}
