package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"clothingstore/internal/models"
	"clothingstore/internal/repositories"
)

// EventPublisher publishes product lifecycle events to a message broker.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

// ProductQuery carries the recognized listing parameters.
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// ProductResponse is a product enriched with its derived image URL. The URL
// is nil when the product carries no image.
type ProductResponse struct {
	models.Product
	ProductImageURL *string `json:"productImageUrl"`
}

// ProductPage is the result of a listing: one page of products plus
// pagination metadata.
type ProductPage struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// ProductService handles business logic related to products: input
// validation, pagination, the image fallback on update, and event
// publishing. A nil publisher disables publishing.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// applyInput overlays the supplied form fields onto a product, leaving
// absent fields untouched. Text fields are trimmed.
func applyInput(product *models.Product, input models.ProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Value != nil {
		product.Value = *input.Value
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
}

// fieldMessage translates a validator error into the message the API
// contract promises for that field.
func fieldMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Name":
		return "Product name is required"
	case "Category":
		if fe.Tag() == "oneof" {
			return "Category must be one of " + strings.Join(models.ProductCategories, ", ")
		}
		return "Category is required"
	case "Price":
		return "Price cannot be negative"
	case "Value":
		return "Value cannot be negative"
	case "Stock":
		return "Stock cannot be negative"
	case "Description":
		return "Description is required"
	case "ProductImage":
		return "Product image is required"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// validateProduct applies the same field rules on create and update. On
// create the numeric fields must also be present, which the struct tags
// alone cannot express (0 is a legal value).
func (s *ProductService) validateProduct(product *models.Product, input models.ProductInput, create bool) error {
	var messages []string
	if create {
		if input.Price == nil {
			messages = append(messages, "Price is required")
		}
		if input.Value == nil {
			messages = append(messages, "Value is required")
		}
		if input.Stock == nil {
			messages = append(messages, "Stock is required")
		}
	}
	if err := s.validate.Struct(product); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return fmt.Errorf("failed to validate product: %w", err)
		}
		for _, fe := range fieldErrors {
			messages = append(messages, fieldMessage(fe))
		}
	}
	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}

// CreateProduct validates and persists a new product. uploadedImage is the
// generated filename from the upload gateway, or empty when no file was
// attached (which fails validation, since the image is required).
func (s *ProductService) CreateProduct(input models.ProductInput, uploadedImage string) (*models.Product, error) {
	product := &models.Product{}
	applyInput(product, input)
	if uploadedImage != "" {
		product.ProductImage = uploadedImage
	}

	if err := s.validateProduct(product, input, true); err != nil {
		return nil, err
	}

	// The uploaded file is already on disk here. If the insert fails the
	// file is orphaned. TODO: delete the uploaded file when Create fails.
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// ListProducts returns one page of products matching the query, each
// enriched with its image URL, plus pagination metadata. Empty result sets
// are not an error.
func (s *ProductService) ListProducts(query ProductQuery, baseURL string) (*ProductPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	filter := repositories.ProductFilter{
		Category: query.Category,
		Search:   query.Search,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	totalItems, err := s.repo.Count(filter)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.Find(filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, s.toResponse(product, baseURL))
	}

	return &ProductPage{
		Products: responses,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   int(math.Ceil(float64(totalItems) / float64(limit))),
			TotalItems:   totalItems,
			ItemsPerPage: limit,
		},
	}, nil
}

// GetProductByID retrieves a single product with its derived image URL.
func (s *ProductService) GetProductByID(id string, baseURL string) (*ProductResponse, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(*product, baseURL)
	return &resp, nil
}

// UpdateProduct overlays the supplied fields onto the stored record,
// re-validates it with the same rules as on create, and persists it.
func (s *ProductService) UpdateProduct(id string, input models.ProductInput, uploadedImage string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	applyInput(product, input)
	// An update without a new file keeps the stored image; it is never
	// nulled out just because no file was attached.
	if uploadedImage != "" {
		product.ProductImage = uploadedImage
	}

	if err := s.validateProduct(product, input, false); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// DeleteProduct removes a product. Deleting an id that doesn't exist
// succeeds, and the associated image file is never removed.
func (s *ProductService) DeleteProduct(id string) error {
	removed, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if removed && s.publisher != nil {
		payload := map[string]interface{}{"productID": id}
		if err := s.publisher.PublishProductEvent("product.deleted", payload); err != nil {
			log.Printf("Warning: failed to publish product.deleted event for product %s: %v", id, err)
		}
	}
	return nil
}

func (s *ProductService) toResponse(product models.Product, baseURL string) ProductResponse {
	resp := ProductResponse{Product: product}
	if product.ProductImage != "" {
		url := fmt.Sprintf("%s/uploads/%s", baseURL, product.ProductImage)
		resp.ProductImageURL = &url
	}
	return resp
}

func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"productID": product.ID,
		"name":      product.Name,
		"category":  product.Category,
	}
	if err := s.publisher.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for product %s: %v", event, product.ID, err)
	}
}
