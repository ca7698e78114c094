package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mkstudio/studio-api/internal/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be 1, 10 or 20, or 0 for a credit")

// Fixed price table. Paid packs come in quantities of 1, 10 and 20; the
// 20-pack exists for collective sessions only, and the duo 10-pack has a
// family discount rate.
var priceTable = map[domain.SessionKind]map[int]decimal.Decimal{
	domain.KindIndividual: {
		1:  decimal.NewFromInt(32),
		10: decimal.NewFromInt(260),
	},
	domain.KindDuo: {
		1:  decimal.NewFromInt(25),
		10: decimal.NewFromInt(220),
	},
	domain.KindCollective: {
		1:  decimal.NewFromInt(12),
		10: decimal.NewFromInt(100),
		20: decimal.NewFromInt(185),
	},
}

var duoFamilyTenPack = decimal.NewFromInt(187)

// SaleAmount computes the price of a paid pack. The family discount only
// applies to the duo 10-pack.
func SaleAmount(kind domain.SessionKind, quantity int, familyDiscount bool) (decimal.Decimal, error) {
	if kind == domain.KindDuo && quantity == 10 && familyDiscount {
		return duoFamilyTenPack, nil
	}

	amount, ok := priceTable[kind][quantity]
	if !ok {
		return decimal.Zero, ErrInvalidQuantity
	}

	return amount, nil
}
