package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateoquiroz/bookhaven-backend/api/responses"
	"github.com/mateoquiroz/bookhaven-backend/internal/books"
	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
	"github.com/mateoquiroz/bookhaven-backend/pkg/logger"
)

type catalogFormat struct {
	ID         uuid.UUID        `json:"id"`
	FormatType string           `json:"formatType"`
	Price      decimal.Decimal  `json:"price"`
	FinalPrice *decimal.Decimal `json:"finalPrice,omitempty"`
	InStock    bool             `json:"inStock"`
}

type catalogBook struct {
	ID      uuid.UUID       `json:"id"`
	Title   string          `json:"title"`
	Author  string          `json:"author"`
	ISBN    *string         `json:"isbn,omitempty"`
	Formats []catalogFormat `json:"formats"`
}

// CatalogList returns the active titles with their purchasable formats.
func CatalogList(repo *books.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		rows, err := repo.ListActive(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog"))
			return
		}

		out := make([]catalogBook, 0, len(rows))
		for i := range rows {
			out = append(out, newCatalogBook(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"books": out})
	}
}

func newCatalogBook(book *models.Book) catalogBook {
	formats := make([]catalogFormat, 0, len(book.Formats))
	for _, f := range book.Formats {
		formats = append(formats, catalogFormat{
			ID:         f.ID,
			FormatType: string(f.FormatType),
			Price:      f.Price,
			FinalPrice: f.FinalPrice,
			InStock:    f.InStock,
		})
	}
	return catalogBook{
		ID:      book.ID,
		Title:   book.Title,
		Author:  book.Author,
		ISBN:    book.ISBN,
		Formats: formats,
	}
}
