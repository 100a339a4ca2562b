package csvimport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidRow(t *testing.T) {
	row := &Row{Number: 2, Fields: map[string]string{
		"sku": "SKU-1", "name": "Widget", "price": "9.999", "stock_quantity": "10",
	}}

	validated, errs := Validate(row)
	require.Empty(t, errs)
	require.NotNil(t, validated)
	assert.Equal(t, "SKU-1", validated.SKU)
	assert.True(t, validated.Price.Equal(decimal.NewFromFloat(10.00)), "price should round to 2dp: got %s", validated.Price)
	assert.Equal(t, 10, validated.StockQuantity)
	assert.Equal(t, "active", validated.Status)
}

func TestValidate_CollectsAllFieldErrors(t *testing.T) {
	row := &Row{Number: 3, Fields: map[string]string{
		"sku": "", "name": "", "price": "not-a-number", "stock_quantity": "-5", "status": "bogus",
	}}

	validated, errs := Validate(row)
	assert.Nil(t, validated)
	assert.Len(t, errs, 5)
}

func TestValidate_NegativeStockRejected(t *testing.T) {
	row := &Row{Number: 4, Fields: map[string]string{
		"sku": "SKU-2", "name": "Gadget", "price": "1.00", "stock_quantity": "-1",
	}}

	_, errs := Validate(row)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "stock_quantity")
}

func TestValidate_DefaultsStatusToActive(t *testing.T) {
	row := &Row{Number: 5, Fields: map[string]string{
		"sku": "SKU-3", "name": "Thing", "price": "1.00", "stock_quantity": "0", "status": "",
	}}

	validated, errs := Validate(row)
	require.Empty(t, errs)
	assert.Equal(t, "active", validated.Status)
}

func TestValidate_RecognizedStatuses(t *testing.T) {
	for _, status := range []string{"active", "inactive", "discontinued"} {
		row := &Row{Number: 6, Fields: map[string]string{
			"sku": "SKU-4", "name": "Thing", "price": "1.00", "stock_quantity": "0", "status": status,
		}}
		validated, errs := Validate(row)
		require.Empty(t, errs, "status %q should be valid", status)
		assert.Equal(t, status, validated.Status)
	}
}
