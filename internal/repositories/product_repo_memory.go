package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clothingstore/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository. It backs the "memory" DSN for local runs and keeps
// integration tests free of external services.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string // insertion order, stands in for the creation-date ordering of the SQL store
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func matchesFilter(product models.Product, filter ProductFilter) bool {
	if filter.Category != "" && product.Category != filter.Category {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}

// Find returns the filtered page in insertion order.
func (r *InMemoryProductRepository) Find(filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matching := make([]models.Product, 0)
	for _, id := range r.order {
		product := r.products[id]
		if matchesFilter(product, filter) {
			matching = append(matching, product)
		}
	}

	if filter.Offset >= len(matching) {
		return []models.Product{}, nil
	}
	matching = matching[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matching) {
		matching = matching[:filter.Limit]
	}
	return matching, nil
}

// Count returns how many products match the filter.
func (r *InMemoryProductRepository) Count(filter ProductFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, product := range r.products {
		if matchesFilter(product, filter) {
			total++
		}
	}
	return total, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning its ID and timestamps.
func (r *InMemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreationDate.IsZero() {
		product.CreationDate = now
	}
	product.UpdatedAt = now

	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update modifies an existing product, refreshing its UpdatedAt timestamp.
func (r *InMemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrProductNotFound)
	}
	product.CreationDate = stored.CreationDate
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID, reporting whether it existed.
func (r *InMemoryProductRepository) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	for i, storedID := range r.order {
		if storedID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}
