package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroz/bookhaven-backend/pkg/db"
	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
)

const maxLineQuantity = 999

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogLoader interface {
	FindFormatForBook(ctx context.Context, bookID, formatID uuid.UUID) (*models.Book, *models.BookFormat, error)
}

// Service exposes the server-side cart operations for one authenticated user.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartLineItem, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartLineItem, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*models.CartLineItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    LineItemRepository
	tx      txRunner
	catalog catalogLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo LineItemRepository, tx txRunner, catalog catalogLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	return &service{repo: repo, tx: tx, catalog: catalog}, nil
}

// AddItemInput captures the payload to create or merge a line item.
type AddItemInput struct {
	BookID   uuid.UUID
	FormatID uuid.UUID
	Quantity int
}

// UpdateItemInput captures a quantity change for an existing line item.
type UpdateItemInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// GetCart returns the user's line items in insertion order.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartLineItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return items, nil
}

// AddItem snapshots the catalog row and either creates a new line item or
// sums the quantity onto the existing (book, format) row.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartLineItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.BookID == uuid.Nil || input.FormatID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id and format id are required")
	}
	if input.Quantity < 1 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity out of range")
	}

	book, format, err := s.catalog.FindFormatForBook(ctx, input.BookID, input.FormatID)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book is not available")
	}
	if !format.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "format is out of stock")
	}

	var result *models.CartLineItem
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, findErr := repo.FindByUserBookFormat(ctx, userID, input.BookID, input.FormatID)
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load cart item")
		}

		if existing != nil && findErr == nil {
			existing.Quantity += input.Quantity
			if existing.Quantity > maxLineQuantity {
				existing.Quantity = maxLineQuantity
			}
			updated, updateErr := repo.Update(ctx, existing)
			if updateErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, updateErr, "update cart item")
			}
			result = updated
			return nil
		}

		item := &models.CartLineItem{
			ID:         uuid.New(),
			UserID:     userID,
			BookID:     input.BookID,
			FormatID:   input.FormatID,
			Quantity:   input.Quantity,
			BookTitle:  book.Title,
			FormatType: format.FormatType,
			Price:      format.Price,
			FinalPrice: format.FinalPrice,
		}
		created, createErr := repo.Create(ctx, item)
		if createErr != nil {
			if db.IsUniqueViolation(createErr, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, createErr, "cart item already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, createErr, "create cart item")
		}
		result = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// UpdateItem sets the quantity on an existing line item owned by the user.
func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*models.CartLineItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if input.Quantity < 1 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity out of range")
	}

	item, err := s.repo.FindByIDAndUser(ctx, input.ItemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	item.Quantity = input.Quantity
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return updated, nil
}

// RemoveItem deletes a line item owned by the user.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}

	affected, err := s.repo.DeleteByIDAndUser(ctx, itemID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// Clear removes every line item for the user.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}
