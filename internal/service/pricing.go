package service

import (
	"fmt"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/shopspring/decimal"
)

// PricingPolicy prices everything on top of merchandise.
type PricingPolicy interface {
	Quote(subtotal decimal.Decimal, items []entities.OrderItem) entities.Quote
}

type flatPricing struct {
	shipping decimal.Decimal
	taxRate  decimal.Decimal
}

func NewFlatPricing(cfg config.Checkout) (*flatPricing, error) {
	shipping, err := decimal.NewFromString(cfg.FlatShipping)
	if err != nil {
		return nil, fmt.Errorf("invalid flat shipping %q: %w", cfg.FlatShipping, err)
	}
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", cfg.TaxRate, err)
	}
	if shipping.IsNegative() || rate.IsNegative() {
		return nil, fmt.Errorf("shipping and tax rate must not be negative")
	}
	return &flatPricing{shipping: shipping, taxRate: rate}, nil
}

func (p *flatPricing) Quote(subtotal decimal.Decimal, _ []entities.OrderItem) entities.Quote {
	return entities.Quote{
		Shipping: p.shipping,
		Tax:      subtotal.Mul(p.taxRate).Round(2),
		Discount: decimal.Zero,
	}
}
