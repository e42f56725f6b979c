package model

type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

func (p Product) Sequence() (int, error) { return p.ID, nil }

// ProductInput is the accepted body of a create request. Unknown fields are
// ignored.
type ProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// ProductPatch is a partial update. Nil fields keep their stored value; an id
// in the body has no field here and is therefore never applied.
type ProductPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Code        *string   `json:"code"`
	Price       *float64  `json:"price"`
	Status      *bool     `json:"status"`
	Stock       *int      `json:"stock"`
	Category    *string   `json:"category"`
	Thumbnails  *[]string `json:"thumbnails"`
}

func (in ProductInput) ToProduct(id int) Product {
	thumbnails := in.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	return Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		Price:       in.Price,
		Status:      in.Status,
		Stock:       in.Stock,
		Category:    in.Category,
		Thumbnails:  thumbnails,
	}
}

// Apply returns p with every non-nil patch field overwritten.
func (patch ProductPatch) Apply(p Product) Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = append([]string{}, (*patch.Thumbnails)...)
	}
	return p
}
