package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
)

// LineItemRepository abstracts cart line item persistence.
type LineItemRepository interface {
	WithTx(tx *gorm.DB) LineItemRepository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLineItem, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.CartLineItem, error)
	FindByUserBookFormat(ctx context.Context, userID, bookID, formatID uuid.UUID) (*models.CartLineItem, error)
	Create(ctx context.Context, item *models.CartLineItem) (*models.CartLineItem, error)
	Update(ctx context.Context, item *models.CartLineItem) (*models.CartLineItem, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
