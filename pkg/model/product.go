package model

// Product is a catalog item as returned by the remote product API.
type Product struct {
	ID        string  `json:"_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	CreatedAt string  `json:"createdAt"`
}

// ProductsResponse is the paged listing returned by GET /products.
type ProductsResponse struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
}

// Pagination returns the paging summary carried by the response.
func (r ProductsResponse) Pagination() Pagination {
	return Pagination{Total: r.Total, Page: r.Page, Pages: r.Pages}
}

// ProductFormData is the payload for creating a product.
type ProductFormData struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// ProductPatch is a partial update. Nil fields are left out of the PATCH body.
type ProductPatch struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil
}

// Pagination summarises the last successful listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// InitialPagination is the summary held before any listing has succeeded.
func InitialPagination() Pagination {
	return Pagination{Total: 0, Page: 1, Pages: 1}
}

// ListFilters are the optional query parameters of a listing.
// Zero values are treated as unset.
type ListFilters struct {
	Page     int     `json:"page,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Category string  `json:"category,omitempty"`
	MinPrice float64 `json:"minPrice,omitempty"`
	MaxPrice float64 `json:"maxPrice,omitempty"`
}
