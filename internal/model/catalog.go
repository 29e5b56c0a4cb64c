package model

import "time"

// Track 外部目录：音轨（本子系统只读）
type Track struct {
	ID            string  `gorm:"primaryKey;type:varchar(64)"`
	Title         string  `gorm:"type:varchar(255);not null"`
	Description   string  `gorm:"type:text"`
	Price         float64 `gorm:"not null;default:0"`
	CreatorID     string  `gorm:"type:varchar(64);index"`
	CoverImageURL string  `gorm:"type:varchar(512)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Track) TableName() string { return "tracks" }

// Book 外部目录：书籍（本子系统只读）
type Book struct {
	ID            string  `gorm:"primaryKey;type:varchar(64)"`
	Title         string  `gorm:"type:varchar(255);not null"`
	Description   string  `gorm:"type:text"`
	Price         float64 `gorm:"not null;default:0"`
	CreatorID     string  `gorm:"type:varchar(64);index"`
	CoverImageURL string  `gorm:"type:varchar(512)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Book) TableName() string { return "books" }

// All 需要迁移的模型
func All() []interface{} {
	return []interface{}{&User{}, &Follow{}, &Fan{}, &Message{}, &Notification{}, &Track{}, &Book{}}
}
