package product

import (
	"github.com/example/dscommerce/internal/domain/category"
	"github.com/example/dscommerce/internal/validation"
)

// Violation messages, one per rule.
const (
	MsgNameLength       = "name length out of range"
	MsgDescriptionShort = "description too short"
	MsgPriceNotPositive = "price must be positive"
	MsgCategoryRequired = "at least one category required"
	MsgCategoryUnknown  = "category not found"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	ImgURL      string
	Categories  []category.Category
}

// CategoryRef points at an existing category by id.
type CategoryRef struct {
	ID int64 `json:"id"`
}

// Input is the payload of a product insert or replace. Field order is the
// order in which violations are reported.
type Input struct {
	Name        string        `json:"name" validate:"min=3,max=80"`
	Description string        `json:"description" validate:"min=10"`
	Price       float64       `json:"price" validate:"gt=0"`
	ImgURL      string        `json:"imgUrl"`
	Categories  []CategoryRef `json:"categories" validate:"required,min=1"`
}

var messages = validation.Messages{
	"name":        MsgNameLength,
	"description": MsgDescriptionShort,
	"price":       MsgPriceNotPositive,
	"categories":  MsgCategoryRequired,
}

// Validate checks every field rule of in and returns all violations, in
// field declaration order. An empty result means the payload is valid.
func Validate(in Input) []validation.Violation {
	return validation.Struct(in, messages)
}

// CategoryIDs returns the referenced category ids in payload order.
func (in Input) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(in.Categories))
	for _, c := range in.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
