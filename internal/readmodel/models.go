package readmodel

import (
	"time"

	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
)

// CategoryReadModel is the read model for product categories
type CategoryReadModel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductReadModel is the read model for a single product
type ProductReadModel struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	ImgURL      string              `json:"imgUrl"`
	Categories  []CategoryReadModel `json:"categories"`
}

// ProductSummaryReadModel is the listing projection of a product
type ProductSummaryReadModel struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	ImgURL string  `json:"imgUrl"`
}

// PageReadModel wraps one page of a listing
type PageReadModel[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

type ClientReadModel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PaymentReadModel struct {
	ID     int64     `json:"id"`
	Moment time.Time `json:"moment"`
}

// OrderItemReadModel represents an item in an order
type OrderItemReadModel struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImgURL    string  `json:"imgUrl"`
	SubTotal  float64 `json:"subTotal"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID      int64                `json:"id"`
	Moment  time.Time            `json:"moment"`
	Status  string               `json:"status"`
	Client  ClientReadModel      `json:"client"`
	Payment *PaymentReadModel    `json:"payment"`
	Items   []OrderItemReadModel `json:"items"`
	Total   float64              `json:"total"`
}

func FromProduct(p *product.Product) *ProductReadModel {
	categories := make([]CategoryReadModel, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, CategoryReadModel{ID: c.ID, Name: c.Name})
	}
	return &ProductReadModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Categories:  categories,
	}
}

func SummaryFromProduct(p *product.Product) ProductSummaryReadModel {
	return ProductSummaryReadModel{ID: p.ID, Name: p.Name, Price: p.Price, ImgURL: p.ImgURL}
}

// NewPage computes the page metadata for content taken at page number with
// the given size out of total elements.
func NewPage[T any](content []T, number, size int, total int64) *PageReadModel[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &PageReadModel[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         number == 0,
		Last:          number >= totalPages-1,
	}
}

func FromOrder(o *order.Order) *OrderReadModel {
	items := make([]OrderItemReadModel, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemReadModel{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImgURL:    it.ImgURL,
			SubTotal:  it.SubTotal().InexactFloat64(),
		})
	}

	var payment *PaymentReadModel
	if o.Payment != nil {
		payment = &PaymentReadModel{ID: o.Payment.ID, Moment: o.Payment.Moment.UTC()}
	}

	return &OrderReadModel{
		ID:      o.ID,
		Moment:  o.Moment.UTC(),
		Status:  string(o.Status),
		Client:  ClientReadModel{ID: o.Client.ID, Name: o.Client.Name},
		Payment: payment,
		Items:   items,
		Total:   o.Total().InexactFloat64(),
	}
}
