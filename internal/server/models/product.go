package models

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int64   `json:"stock"`
	Rating      float64 `json:"rating"`
	CategoryID  *int64  `json:"category_id"`
	SupplierID  int64   `json:"supplier_id"`
	IsActive    bool    `json:"is_active"`
}

// Available reports whether read endpoints may show the product.
// Zero stock is treated the same as a deleted product.
func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}

// ProductView is the cached projection of a product. It deliberately omits
// description, stock, rating and supplier.
type ProductView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID *int64 `json:"category_id"`
	Slug       string `json:"slug"`
	IsActive   bool   `json:"is_active"`
	Price      int64  `json:"price"`
}

func (p *Product) View() ProductView {
	return ProductView{
		ID:         p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Slug:       p.Slug,
		IsActive:   p.IsActive,
		Price:      p.Price,
	}
}
