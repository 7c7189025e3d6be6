package store

import (
	"fmt"
	"time"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/domain/category"
	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/domain/user"
)

// SeedPassword is the clear-text password of every seeded user.
const SeedPassword = "123456"

const (
	seedDescription = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
	seedImgURL      = "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/%d-big.jpg"
)

// Fixtures is the development data set loaded into a fresh store.
type Fixtures struct {
	Categories []category.Category
	Products   []product.Product
	Users      []user.User
	Orders     []order.Order
}

// NewFixtures builds the seed data set. Passwords are hashed on every call.
func NewFixtures() (*Fixtures, error) {
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	books := category.Category{ID: 1, Name: "Livros"}
	electronics := category.Category{ID: 2, Name: "Eletrônicos"}
	computers := category.Category{ID: 3, Name: "Computadores"}

	catalog := []struct {
		name  string
		price float64
	}{
		{"The Lord of the Rings", 90.5},
		{"Smart TV", 2190.0},
		{"Macbook Pro", 1250.0},
		{"PC Gamer", 1200.0},
		{"Rails for Dummies", 100.99},
		{"PC Gamer Ex", 1350.0},
		{"PC Gamer X", 1350.0},
		{"PC Gamer Alfa", 1850.0},
		{"PC Gamer Tera", 1950.0},
		{"PC Gamer Y", 1700.0},
		{"PC Gamer Nitro", 1450.0},
		{"PC Gamer Card", 1850.0},
		{"PC Gamer Plus", 1350.0},
		{"PC Gamer Hera", 2250.0},
		{"PC Gamer Weed", 2200.0},
		{"PC Gamer Max", 2340.0},
		{"PC Gamer Turbo", 1280.0},
		{"PC Gamer Hot", 1450.0},
		{"PC Gamer Ez", 1750.0},
		{"PC Gamer Tr", 1650.0},
		{"PC Gamer Tx", 1680.0},
		{"PC Gamer Er", 1850.0},
		{"PC Gamer Min", 2250.0},
		{"PC Gamer Boo", 2350.0},
		{"PC Gamer Foo", 4170.0},
	}

	products := make([]product.Product, 0, len(catalog))
	for i, c := range catalog {
		id := int64(i + 1)
		var cats []category.Category
		switch id {
		case 1:
			cats = []category.Category{books}
		case 2:
			cats = []category.Category{electronics, computers}
		default:
			cats = []category.Category{computers}
		}
		products = append(products, product.Product{
			ID:          id,
			Name:        c.name,
			Description: seedDescription,
			Price:       c.price,
			ImgURL:      fmt.Sprintf(seedImgURL, id),
			Categories:  cats,
		})
	}

	maria := user.User{ID: 1, Name: "Maria Brown", Email: "maria@gmail.com", PasswordHash: hash, Roles: auth.RoleClient}
	alex := user.User{ID: 2, Name: "Alex Green", Email: "alex@gmail.com", PasswordHash: hash, Roles: auth.RoleBoth}

	item := func(p product.Product, qty int) order.Item {
		return order.Item{ProductID: p.ID, Name: p.Name, ImgURL: p.ImgURL, Quantity: qty, Price: p.Price}
	}
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}

	orders := []order.Order{
		{
			ID:      1,
			Moment:  at("2022-07-25T13:00:00Z"),
			Status:  order.StatusPaid,
			Client:  order.Client{ID: maria.ID, Name: maria.Name},
			Items:   []order.Item{item(products[0], 2), item(products[2], 1)},
			Payment: &order.Payment{ID: 1, Moment: at("2022-07-25T15:00:00Z")},
		},
		{
			ID:      2,
			Moment:  at("2022-07-29T15:50:00Z"),
			Status:  order.StatusDelivered,
			Client:  order.Client{ID: alex.ID, Name: alex.Name},
			Items:   []order.Item{item(products[2], 1)},
			Payment: &order.Payment{ID: 2, Moment: at("2022-07-30T11:00:00Z")},
		},
		{
			ID:     3,
			Moment: at("2022-08-03T14:20:00Z"),
			Status: order.StatusWaitingPayment,
			Client: order.Client{ID: maria.ID, Name: maria.Name},
			Items:  []order.Item{item(products[0], 1)},
		},
	}

	return &Fixtures{
		Categories: []category.Category{books, electronics, computers},
		Products:   products,
		Users:      []user.User{maria, alex},
		Orders:     orders,
	}, nil
}

// NewSeededMemoryStore returns a MemoryStore holding the development fixtures.
func NewSeededMemoryStore() (*MemoryStore, error) {
	fx, err := NewFixtures()
	if err != nil {
		return nil, err
	}
	ms := NewMemoryStore()
	for _, c := range fx.Categories {
		ms.PutCategory(c)
	}
	for _, p := range fx.Products {
		ms.PutProduct(p)
	}
	for _, u := range fx.Users {
		ms.PutUser(u)
	}
	for _, o := range fx.Orders {
		ms.PutOrder(o)
	}
	return ms, nil
}
