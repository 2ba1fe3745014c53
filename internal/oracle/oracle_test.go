package oracle

import (
	"testing"

	"defidojo/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceOf(t *testing.T) {
	o := New()

	price, err := o.PriceOf(model.TokenETH)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)

	price, err = o.PriceOf(model.TokenUSDC)
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)

	price, err = o.PriceOf(model.TokenDAI)
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)
}

func TestPriceOfUnsupportedToken(t *testing.T) {
	o := New()

	// The achievement token is tracked by the ledger but never priced
	_, err := o.PriceOf(model.TokenACH)
	assert.ErrorIs(t, err, ErrUnsupportedToken)

	_, err = o.PriceOf(model.Token("DOGE"))
	assert.ErrorIs(t, err, ErrUnsupportedToken)
}

func TestValueOf(t *testing.T) {
	o := New()

	value, err := o.ValueOf(model.TokenETH, 2.5)
	require.NoError(t, err)
	assert.InDelta(t, 2500.0, value, 1e-9)

	value, err = o.ValueOf(model.TokenDAI, 42)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, value, 1e-9)

	_, err = o.ValueOf(model.TokenACH, 1)
	assert.ErrorIs(t, err, ErrUnsupportedToken)
}
