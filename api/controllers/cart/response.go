package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
)

// LineItem is the wire shape of one cart row.
type LineItem struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"productId"`
	ProductFormatID uuid.UUID        `json:"productFormatId"`
	Quantity        int              `json:"quantity"`
	ProductTitle    string           `json:"productTitle"`
	FormatType      string           `json:"formatType"`
	Price           decimal.Decimal  `json:"price"`
	FinalPrice      *decimal.Decimal `json:"finalPrice,omitempty"`
}

// Cart is the GET /api/v1/cart payload.
type Cart struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func newLineItem(item *models.CartLineItem) LineItem {
	return LineItem{
		ID:              item.ID,
		ProductID:       item.BookID,
		ProductFormatID: item.FormatID,
		Quantity:        item.Quantity,
		ProductTitle:    item.BookTitle,
		FormatType:      string(item.FormatType),
		Price:           item.Price,
		FinalPrice:      item.FinalPrice,
	}
}

func newCart(items []models.CartLineItem) Cart {
	out := Cart{Items: make([]LineItem, 0, len(items)), TotalPrice: decimal.Zero}
	for i := range items {
		item := &items[i]
		out.Items = append(out.Items, newLineItem(item))
		out.TotalItems += item.Quantity

		unit := item.Price
		if item.FinalPrice != nil {
			unit = *item.FinalPrice
		}
		out.TotalPrice = out.TotalPrice.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return out
}
