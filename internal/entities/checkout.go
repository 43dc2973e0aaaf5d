package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CheckoutRequest is a cart turned in by a buyer. UserID is set only when
// the upstream identity provider authenticated the request.
type CheckoutRequest struct {
	Lines    []CartLine
	UserID   string
	Customer Customer
	Shipping Address
	Notes    string
}

// Buyer resolves who the order belongs to: the registered user when known,
// otherwise the guest contact.
func (r CheckoutRequest) Buyer() Buyer {
	if r.UserID != "" {
		return Buyer{UserID: r.UserID, GuestPhone: r.Customer.Phone}
	}
	return Buyer{GuestEmail: r.Customer.Email, GuestPhone: r.Customer.Phone}
}

// ShippingSummary renders the address the way it is stored on the order.
func (a Address) ShippingSummary() string {
	line := a.Line1
	if a.Line2 != "" {
		line += ", " + a.Line2
	}
	return line + "\n" + a.City + ", " + a.State + " " + a.PostalCode
}

// CheckoutSession is what the buyer needs to finish paying with the processor.
type CheckoutSession struct {
	OrderID         string
	OrderNumber     string
	PaymentIntentID string
	ClientSecret    string
	Amount          decimal.Decimal
	Currency        string
}

type CompletionStatus string

const (
	CompletionCompleted        CompletionStatus = "completed"
	CompletionAlreadyCompleted CompletionStatus = "alreadyCompleted"
)

// Quote is the non-merchandise part of an order total.
type Quote struct {
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
}
