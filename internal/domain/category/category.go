package category

// Category is referenced by products and never owned by them.
type Category struct {
	ID   int64
	Name string
}
