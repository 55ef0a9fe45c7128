package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/mateoquiroz/bookhaven-backend/internal/cart"
)

// AddItemRequest is the POST /api/v1/cart/items payload.
type AddItemRequest struct {
	ProductID       uuid.UUID `json:"productId" validate:"required"`
	ProductFormatID uuid.UUID `json:"productFormatId" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1,max=999"`
}

// UpdateItemRequest is the PATCH /api/v1/cart/items payload.
type UpdateItemRequest struct {
	CartItemID uuid.UUID `json:"cartItemId" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1,max=999"`
}

func toAddItemInput(payload AddItemRequest) cartsvc.AddItemInput {
	return cartsvc.AddItemInput{
		BookID:   payload.ProductID,
		FormatID: payload.ProductFormatID,
		Quantity: payload.Quantity,
	}
}

func toUpdateItemInput(payload UpdateItemRequest) cartsvc.UpdateItemInput {
	return cartsvc.UpdateItemInput{
		ItemID:   payload.CartItemID,
		Quantity: payload.Quantity,
	}
}
