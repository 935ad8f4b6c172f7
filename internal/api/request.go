package api

import (
	"strconv"
	"strings"

	"github.com/Checker-Finance/product-explorer/pkg/model"
)

// ListProductsQuery carries the optional listing filters of GET /api/v1/products.
// Non-zero values are passed to the product API as given.
type ListProductsQuery struct {
	Page     int     `query:"page"`
	Limit    int     `query:"limit"`
	Category string  `query:"category"`
	MinPrice float64 `query:"minPrice"`
	MaxPrice float64 `query:"maxPrice"`
}

// Filters converts the query to listing filters.
func (q ListProductsQuery) Filters() model.ListFilters {
	return model.ListFilters{
		Page:     q.Page,
		Limit:    q.Limit,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	}
}

// CreateProductRequest is the payload of POST /api/v1/products.
type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	Category string  `json:"category" validate:"required"`
}

func (r CreateProductRequest) FormData() model.ProductFormData {
	return model.ProductFormData{Name: r.Name, Price: r.Price, Category: r.Category}
}

// UpdateProductRequest is the payload of PATCH /api/v1/products/:id.
// Empty strings and non-positive prices count as "not given".
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// Normalized drops the fields that count as not given.
func (r UpdateProductRequest) Normalized() UpdateProductRequest {
	out := UpdateProductRequest{}
	if r.Name != nil && *r.Name != "" {
		out.Name = r.Name
	}
	if r.Price != nil && *r.Price > 0 {
		out.Price = r.Price
	}
	if r.Category != nil && *r.Category != "" {
		out.Category = r.Category
	}
	return out
}

func (r UpdateProductRequest) Patch() model.ProductPatch {
	return model.ProductPatch{Name: r.Name, Price: r.Price, Category: r.Category}
}

// ProductForm is the dashboard's product form. Every field arrives as text.
type ProductForm struct {
	ID       string `form:"id"`
	Name     string `form:"name"`
	Price    string `form:"price"`
	Category string `form:"category"`
	View     string `form:"view"`
}

func (f ProductForm) createRequest() CreateProductRequest {
	return CreateProductRequest{Name: f.Name, Price: parseNumber(f.Price), Category: f.Category}
}

func (f ProductForm) updateRequest() UpdateProductRequest {
	price := parseNumber(f.Price)
	name, category := f.Name, f.Category
	return UpdateProductRequest{Name: &name, Price: &price, Category: &category}.Normalized()
}

// FilterForm is the dashboard's "fetch all" form.
type FilterForm struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	View     string `form:"view"`
}

func (f FilterForm) query() ListProductsQuery {
	return ListProductsQuery{
		Page:     int(parseNumber(f.Page)),
		Limit:    int(parseNumber(f.Limit)),
		Category: f.Category,
		MinPrice: parseNumber(f.MinPrice),
		MaxPrice: parseNumber(f.MaxPrice),
	}
}

// parseNumber reads a form number; blank or malformed input is 0, i.e. unset.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
