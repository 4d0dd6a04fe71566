package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Construction(t *testing.T) {
	assert.Equal(t, Quantity(30000), NewQuantityFromInt(3))
	assert.Equal(t, Quantity(15000), NewQuantityFromFloat64(1.5))
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.0001))
	assert.Equal(t, Quantity(12345), NewQuantityFromInt64Scaled(12345))
}

func TestQuantity_MulInt(t *testing.T) {
	// Recipe amount times line quantity: 1.5 units * 3 sold = 4.5.
	got := NewQuantityFromFloat64(1.5).MulInt(3)
	assert.Equal(t, NewQuantityFromFloat64(4.5), got)
	assert.Equal(t, "4.5000", got.String())
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "3.0000", NewQuantityFromInt(3).String())
	assert.Equal(t, "0.2500", NewQuantityFromFloat64(0.25).String())
	assert.Equal(t, "-1.5000", NewQuantityFromFloat64(-1.5).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantity_Decimal(t *testing.T) {
	d := NewQuantityFromFloat64(2.5).Decimal()
	assert.True(t, d.Equal(MustMoney("2.5")), "got %s", d)

	// Cost math: 0.30 per unit * 2.5 units.
	cost := MustMoney("0.30").Mul(NewQuantityFromFloat64(2.5).Decimal())
	assert.True(t, cost.Equal(MustMoney("0.75")))
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	type doc struct {
		Amount Quantity `json:"amount"`
	}

	data, err := json.Marshal(doc{Amount: NewQuantityFromFloat64(1.25)})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":1.2500}`, string(data))

	var out doc
	require.NoError(t, json.Unmarshal([]byte(`{"amount":1.25}`), &out))
	assert.Equal(t, NewQuantityFromFloat64(1.25), out.Amount)

	// String form is accepted too.
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"0.5"}`), &out))
	assert.Equal(t, NewQuantityFromFloat64(0.5), out.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":null}`), &out))
	assert.True(t, out.Amount.IsZero())
}

func TestQuantity_Predicates(t *testing.T) {
	assert.True(t, NewQuantityFromInt(1).IsPositive())
	assert.True(t, NewQuantityFromInt(-1).IsNegative())
	assert.True(t, Quantity(0).IsZero())
	assert.Equal(t, NewQuantityFromInt(2), NewQuantityFromInt(-2).Abs())
	assert.Equal(t, NewQuantityFromInt(-2), NewQuantityFromInt(2).Neg())
}

func TestMoney_Parsing(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("19.99")))

	_, err = NewMoneyFromString("not money")
	assert.Error(t, err)

	assert.True(t, Zero().IsZero())
}
