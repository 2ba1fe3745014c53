// Package oracle provides the fixed price lookup for the virtual tokens.
// Prices are set at construction and never move; the scripted market
// time-series the UI draws is cosmetic and lives outside this service.
package oracle

import (
	"errors"
	"fmt"

	"defidojo/backend/internal/model"
)

// ErrUnsupportedToken is returned for tokens outside the priced set.
// The achievement token is tracked by the ledger but carries no price.
var ErrUnsupportedToken = errors.New("oracle: unsupported token")

// Oracle maps each tradable token to its unit price in vUSDC
type Oracle struct {
	prices map[model.Token]float64
}

// New creates an oracle with the game's fixed price table
func New() *Oracle {
	return &Oracle{
		prices: map[model.Token]float64{
			model.TokenETH:  1000,
			model.TokenUSDC: 1,
			model.TokenDAI:  1,
		},
	}
}

// PriceOf returns the unit price of a token in vUSDC
func (o *Oracle) PriceOf(token model.Token) (float64, error) {
	price, ok := o.prices[token]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedToken, token)
	}
	return price, nil
}

// ValueOf returns amount * PriceOf(token)
func (o *Oracle) ValueOf(token model.Token, amount float64) (float64, error) {
	price, err := o.PriceOf(token)
	if err != nil {
		return 0, err
	}
	return amount * price, nil
}
