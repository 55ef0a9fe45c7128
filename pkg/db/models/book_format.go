package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookFormatType enumerates the sellable editions of a title.
type BookFormatType string

const (
	BookFormatHardcover BookFormatType = "hardcover"
	BookFormatPaperback BookFormatType = "paperback"
	BookFormatEbook     BookFormatType = "ebook"
	BookFormatAudiobook BookFormatType = "audiobook"
)

// IsValid reports whether the format type is one of the known editions.
func (t BookFormatType) IsValid() bool {
	switch t {
	case BookFormatHardcover, BookFormatPaperback, BookFormatEbook, BookFormatAudiobook:
		return true
	}
	return false
}

// BookFormat represents a priced edition of a book. FinalPrice carries the
// discounted price when a promotion applies; otherwise it is null and Price
// is authoritative.
type BookFormat struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookID     uuid.UUID        `gorm:"column:book_id;type:uuid;not null;index"`
	FormatType BookFormatType   `gorm:"column:format_type;not null"`
	Price      decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	FinalPrice *decimal.Decimal `gorm:"column:final_price;type:numeric(10,2)"`
	InStock    bool             `gorm:"column:in_stock;not null;default:true"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
