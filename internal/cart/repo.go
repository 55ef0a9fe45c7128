package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
)

// Repository exposes persistence operations for cart line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) LineItemRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByUser returns the user's line items in insertion order.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLineItem, error) {
	var rows []models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDAndUser returns a line item restricted to the owning user.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.CartLineItem, error) {
	var row models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByUserBookFormat returns the line item for a (user, book, format) triple.
func (r *Repository) FindByUserBookFormat(ctx context.Context, userID, bookID, formatID uuid.UUID) (*models.CartLineItem, error) {
	var row models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND format_id = ?", userID, bookID, formatID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new line item.
func (r *Repository) Create(ctx context.Context, item *models.CartLineItem) (*models.CartLineItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves the provided line item.
func (r *Repository) Update(ctx context.Context, item *models.CartLineItem) (*models.CartLineItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteByIDAndUser removes a line item owned by the user. Returns the number
// of rows removed so callers can distinguish a miss.
func (r *Repository) DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartLineItem{})
	return res.RowsAffected, res.Error
}

// DeleteByUser removes every line item for the user.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLineItem{}).Error
}
