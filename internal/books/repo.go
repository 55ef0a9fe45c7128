package books

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroz/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
)

// Repository exposes read access to the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a single book with its formats.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Formats").
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, err
	}
	return &book, nil
}

// FindFormat loads a purchasable format row.
func (r *Repository) FindFormat(ctx context.Context, formatID uuid.UUID) (*models.BookFormat, error) {
	var format models.BookFormat
	err := r.db.WithContext(ctx).
		Where("id = ?", formatID).
		First(&format).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book format not found")
		}
		return nil, err
	}
	return &format, nil
}

// FindFormatForBook loads the book and one of its formats, verifying ownership.
func (r *Repository) FindFormatForBook(ctx context.Context, bookID, formatID uuid.UUID) (*models.Book, *models.BookFormat, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", bookID).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, nil, err
	}

	var format models.BookFormat
	err = r.db.WithContext(ctx).
		Where("id = ? AND book_id = ?", formatID, bookID).
		First(&format).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "book format not found")
		}
		return nil, nil, err
	}

	return &book, &format, nil
}

// ListActive returns active books with formats, ordered by title.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.Book, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Preload("Formats").
		Where("is_active = ?", true).
		Order("title ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
