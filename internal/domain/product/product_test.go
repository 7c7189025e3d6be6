package product

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dscommerce/internal/validation"
)

func validInput() Input {
	return Input{
		Name:        "Me 123",
		Description: "Lorem ipsum, dolor sit amet consectetur adipisicing elit.",
		Price:       20.0,
		ImgURL:      "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/1-big.jpg",
		Categories:  []CategoryRef{{ID: 2}, {ID: 3}},
	}
}

func TestValidate_ValidPayload(t *testing.T) {
	assert.Empty(t, Validate(validInput()))
}

func TestValidate_NameLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		invalid bool
	}{
		{"empty", "", true},
		{"2 chars", "ab", true},
		{"3 chars", "abc", false},
		{"80 chars", strings.Repeat("a", 80), false},
		{"81 chars", strings.Repeat("a", 81), true},
		{"multibyte counted as runes", "Ção", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Name = tt.value

			violations := Validate(in)

			if !tt.invalid {
				assert.Empty(t, violations)
				return
			}
			require.NotEmpty(t, violations)
			assert.Equal(t, validation.Violation{Field: "name", Message: MsgNameLength}, violations[0])
		})
	}
}

func TestValidate_DescriptionTooShort(t *testing.T) {
	in := validInput()
	in.Description = "ab"

	violations := Validate(in)

	require.Len(t, violations, 1)
	assert.Equal(t, "description", violations[0].Field)
	assert.Equal(t, MsgDescriptionShort, violations[0].Message)

	in.Description = strings.Repeat("x", 10)
	assert.Empty(t, Validate(in))
}

func TestValidate_Price(t *testing.T) {
	for _, price := range []float64{0, -1, -0.01} {
		in := validInput()
		in.Price = price

		violations := Validate(in)

		require.Len(t, violations, 1, "price %v", price)
		assert.Equal(t, MsgPriceNotPositive, violations[0].Message)
	}

	in := validInput()
	in.Price = 0.01
	assert.Empty(t, Validate(in))
}

func TestValidate_Categories(t *testing.T) {
	tests := []struct {
		name       string
		categories []CategoryRef
	}{
		{"nil", nil},
		{"empty", []CategoryRef{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Categories = tt.categories

			violations := Validate(in)

			require.Len(t, violations, 1)
			assert.Equal(t, "categories", violations[0].Field)
			assert.Equal(t, MsgCategoryRequired, violations[0].Message)
		})
	}
}

func TestValidate_CollectsAllInDeclarationOrder(t *testing.T) {
	violations := Validate(Input{Name: "ab", Description: "short", Price: 0})

	require.Len(t, violations, 4)
	assert.Equal(t, []string{"name", "description", "price", "categories"}, []string{
		violations[0].Field, violations[1].Field, violations[2].Field, violations[3].Field,
	})
	assert.Equal(t, MsgNameLength, violations[0].Message)
}

func TestInput_CategoryIDs(t *testing.T) {
	assert.Equal(t, []int64{2, 3}, validInput().CategoryIDs())
	assert.Empty(t, Input{}.CategoryIDs())
}
