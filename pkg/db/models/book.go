package models

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog title.
type Book struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string       `gorm:"column:title;not null"`
	Author      string       `gorm:"column:author;not null"`
	ISBN        *string      `gorm:"column:isbn;uniqueIndex"`
	Description *string      `gorm:"column:description"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true"`
	Formats     []BookFormat `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
