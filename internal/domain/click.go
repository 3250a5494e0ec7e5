package domain

import "time"

// ClickRecord представляет один переход по сокращенной ссылке.
// Описательные поля (user agent, IP и т.д.) хранятся как есть, без
// парсинга. URLID — слабая ссылка: целостность не навязывается, связь
// поддерживается только каскадным удалением.
type ClickRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	URLID     string    `gorm:"column:url_id;size:36;not null;index" json:"url_id"`
	UserAgent *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	IPAddress *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	Referrer  *string   `gorm:"column:referrer;size:500" json:"referrer,omitempty"`
	Country   *string   `gorm:"column:country;size:100" json:"country,omitempty"`
	City      *string   `gorm:"column:city;size:100" json:"city,omitempty"`
	ClickedAt time.Time `gorm:"column:clicked_at;index" json:"clicked_at"`
}

// TableName возвращает название таблицы для GORM
func (ClickRecord) TableName() string {
	return "clicks"
}
