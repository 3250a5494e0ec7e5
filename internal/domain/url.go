package domain

import "time"

// URLRecord представляет одну сокращенную ссылку
type URLRecord struct {
	ID          string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID      string     `gorm:"column:user_id;size:64;not null;index" json:"user_id"` // opaque ID владельца, выдается внешним identity provider
	OriginalURL string     `gorm:"column:original_url;type:text;not null" json:"original_url"`
	ShortCode   string     `gorm:"column:short_code;size:32;uniqueIndex;not null" json:"short_code"`
	CustomAlias *string    `gorm:"column:custom_alias;size:32" json:"custom_alias,omitempty"`
	Clicks      int64      `gorm:"column:clicks;not null;default:0" json:"clicks"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (URLRecord) TableName() string {
	return "urls"
}

// IsExpired сообщает, истек ли срок действия ссылки.
// Хранилище не удаляет истекшие записи само, проверка ленивая.
func (u *URLRecord) IsExpired() bool {
	if u.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*u.ExpiresAt)
}

// URLUpdate описывает частичное обновление URLRecord.
// nil-поля не трогаются; ShortCode не обновляется — уникальность
// фиксируется в момент создания.
type URLUpdate struct {
	OriginalURL *string
	CustomAlias *string
	IsActive    *bool
	ExpiresAt   *time.Time
}
