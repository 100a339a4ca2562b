package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_ValidHeader(t *testing.T) {
	r, err := NewReader(strings.NewReader("sku,name,price,stock_quantity,description\n"))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestNewReader_MissingColumns(t *testing.T) {
	_, err := NewReader(strings.NewReader("sku,name\n"))
	require.Error(t, err)

	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.ElementsMatch(t, []string{"price", "stock_quantity"}, missingErr.Missing)
}

func TestNewReader_HeaderIsCaseAndWhitespaceInsensitive(t *testing.T) {
	r, err := NewReader(strings.NewReader(" SKU , Name,PRICE,Stock_Quantity\n"))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestNewReader_TrimsBOMFromFirstHeaderCell(t *testing.T) {
	r, err := NewReader(strings.NewReader("\ufeffsku,name,price,stock_quantity\nSKU-1,Widget,9.99,10\n"))
	require.NoError(t, err)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", row.Fields["sku"], "a BOM stuck to the first header cell must not hide the sku column")
}

func TestReader_Next(t *testing.T) {
	r, err := NewReader(strings.NewReader("sku,name,price,stock_quantity\nSKU-1,Widget,9.99,10\nSKU-2,Gadget,19.99,5\n"))
	require.NoError(t, err)

	row1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, row1.Number)
	assert.Equal(t, "SKU-1", row1.Fields["sku"])
	assert.Equal(t, "9.99", row1.Fields["price"])

	row2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, row2.Number)
	assert.Equal(t, "SKU-2", row2.Fields["sku"])

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestColumns(t *testing.T) {
	required, optional := Columns()
	assert.Equal(t, []string{"sku", "name", "price", "stock_quantity"}, required)
	assert.Equal(t, []string{"description", "status", "primary_image"}, optional)
}
