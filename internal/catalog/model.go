package catalog

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"categoryId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceInCents int       `json:"priceInCents"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Stock        int       `json:"stock"`
	IsActive     bool      `json:"isActive"`
	IsFeatured   bool      `json:"isFeatured"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StockMovement records a single stock adjustment. Positive quantities add
// stock, negative quantities subtract.
type StockMovement struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	QuantityChange int       `json:"quantityChange"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CategoryInput carries the mutable category fields for create.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    *bool  `json:"isActive"`
}

// CategoryPatch carries optional fields for a partial update; nil fields
// are left untouched.
type CategoryPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

// ProductInput carries the mutable product fields for create.
type ProductInput struct {
	CategoryID   string `json:"categoryId" validate:"required"`
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description"`
	PriceInCents int    `json:"priceInCents" validate:"gte=0"`
	ImageURL     string `json:"imageUrl"`
	Stock        int    `json:"stock" validate:"gte=0"`
	IsActive     *bool  `json:"isActive"`
	IsFeatured   *bool  `json:"isFeatured"`
}

// ProductPatch carries optional fields for a partial update.
type ProductPatch struct {
	CategoryID   *string `json:"categoryId"`
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	PriceInCents *int    `json:"priceInCents" validate:"omitempty,gte=0"`
	ImageURL     *string `json:"imageUrl"`
	Stock        *int    `json:"stock" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"isActive"`
	IsFeatured   *bool   `json:"isFeatured"`
}
