package models

import "time"

// ProductCategories is the closed set of categories a product may belong to.
// Any other value is rejected at the boundary.
var ProductCategories = []string{"Casual", "Formal", "Sporty", "Urban", "Elegant", "Vintage"}

// Product represents a clothing product in the catalog.
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"not null" validate:"required"`
	Category     string    `json:"category" gorm:"not null" validate:"required,oneof=Casual Formal Sporty Urban Elegant Vintage"`
	Price        float64   `json:"price" gorm:"not null" validate:"gte=0"`
	Value        float64   `json:"value" gorm:"not null" validate:"gte=0"`
	Stock        int       `json:"stock" gorm:"not null" validate:"gte=0"`
	Description  string    `json:"description" gorm:"not null" validate:"required"`
	ProductImage string    `json:"productImage" validate:"required"`
	CreationDate time.Time `json:"creationDate" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ProductInput carries the form fields of a create or update request.
// Pointer fields distinguish "not supplied" from a zero value, so updates
// can be partial.
type ProductInput struct {
	Name        *string
	Category    *string
	Price       *float64
	Value       *float64
	Stock       *int
	Description *string
}
