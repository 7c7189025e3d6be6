package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusWaitingPayment Status = "WAITING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCanceled       Status = "CANCELED"
)

// Client is the owner of an order.
type Client struct {
	ID   int64
	Name string
}

// Item is one line of an order. Price is the unit price captured when the
// order was placed, not the product's current price.
type Item struct {
	ProductID int64
	Name      string
	ImgURL    string
	Quantity  int
	Price     float64
}

// SubTotal is price times quantity.
func (i Item) SubTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID     int64
	Moment time.Time
}

type Order struct {
	ID      int64
	Moment  time.Time
	Status  Status
	Client  Client
	Items   []Item
	Payment *Payment
}

// Total sums the item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.SubTotal())
	}
	return total
}
