package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineItem persists one (book, format) snapshot in a user's cart.
// At most one row exists per (user_id, book_id, format_id); quantity is the
// only mutable column once the row exists.
type CartLineItem struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_book_format"`
	BookID     uuid.UUID        `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_cart_user_book_format"`
	FormatID   uuid.UUID        `gorm:"column:format_id;type:uuid;not null;uniqueIndex:idx_cart_user_book_format"`
	Quantity   int              `gorm:"column:quantity;not null"`
	BookTitle  string           `gorm:"column:book_title;not null"`
	FormatType BookFormatType   `gorm:"column:format_type;not null"`
	Price      decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	FinalPrice *decimal.Decimal `gorm:"column:final_price;type:numeric(10,2)"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
