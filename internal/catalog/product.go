package catalog

import (
	"time"
)

type Review struct {
	UserID    int     `json:"user_id" bson:"user_id"`
	Rating    float64 `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Comment   string  `json:"comment" bson:"comment"`
	CreatedAt string  `json:"created_at" bson:"created_at"`
	UpdatedAt *string `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type Variant struct {
	SKU             string         `json:"sku" bson:"sku" validate:"required"`
	Name            string         `json:"name" bson:"name" validate:"required"`
	AdditionalPrice *float64       `json:"additional_price,omitempty" bson:"additional_price,omitempty"`
	Attributes      map[string]any `json:"attributes" bson:"attributes"`
}

type Price struct {
	Amount             float64  `json:"amount" bson:"amount" validate:"gte=0"`
	Currency           string   `json:"currency" bson:"currency" validate:"currency"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty" bson:"discount_percentage,omitempty"`
	DiscountedAmount   *float64 `json:"discounted_amount,omitempty" bson:"discounted_amount,omitempty"`
}

type Manufacturer struct {
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	Address      string `json:"address,omitempty" bson:"address,omitempty"`
	Country      string `json:"country,omitempty" bson:"country,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	Website      string `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
}

// Product is a catalog entry as exposed by the API and stored in MongoDB.
type Product struct {
	ID          string `json:"id" bson:"id"`
	SKU         string `json:"sku" bson:"sku" validate:"notblank"`
	Name        string `json:"name" bson:"name" validate:"notblank"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Category    string `json:"category" bson:"category" validate:"notblank"`
	Brand       string `json:"brand,omitempty" bson:"brand,omitempty"`

	Price         Price `json:"price" bson:"price"`
	StockQuantity int   `json:"stock_quantity" bson:"stock_quantity" validate:"gte=0"`
	InStock       bool  `json:"in_stock" bson:"in_stock"`

	Images   []string       `json:"images" bson:"images"`
	Tags     []string       `json:"tags" bson:"tags"`
	Metadata map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`

	Rating   *float64  `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Reviews  []Review  `json:"reviews" bson:"reviews" validate:"dive"`
	Variants []Variant `json:"variants" bson:"variants" validate:"dive"`

	Manufacturer *Manufacturer `json:"manufacturer,omitempty" bson:"manufacturer,omitempty"`

	Weight     *float64           `json:"weight,omitempty" bson:"weight,omitempty"`
	Dimensions map[string]float64 `json:"dimensions,omitempty" bson:"dimensions,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// normalize fills defaults the original catalog assumed for missing fields.
func (p *Product) normalize() {
	if p.Price.Currency == "" {
		p.Price.Currency = "USD"
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	for i := range p.Variants {
		if p.Variants[i].Attributes == nil {
			p.Variants[i].Attributes = map[string]any{}
		}
	}
}

// Pagination describes a page of search results.
type Pagination struct {
	Total    int64 `json:"total"`
	Limit    int   `json:"limit"`
	Skip     int   `json:"skip"`
	Returned int   `json:"returned"`
}
