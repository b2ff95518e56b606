package repositories

import (
	"errors"

	"clothingstore/internal/models"
)

// ErrProductNotFound is returned when an identifier matches no product.
// Callers should test for it with errors.Is.
var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows and pages a product listing. Zero values mean
// "no constraint" except Limit, which callers must set for Find.
type ProductFilter struct {
	Category string // exact match
	Search   string // case-insensitive substring match against the name
	Offset   int
	Limit    int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(product *models.Product) error
	// Find returns the filtered page in creation order (creationDate, then id).
	Find(filter ProductFilter) ([]models.Product, error)
	// Count returns how many products match the filter, ignoring Offset/Limit.
	Count(filter ProductFilter) (int64, error)
	GetByID(id string) (*models.Product, error)
	Update(product *models.Product) error
	// Delete reports whether a product was actually removed. Deleting an
	// unknown id is not an error.
	Delete(id string) (bool, error)
}
