package usecases

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-ingest/internal/domain/entities"
	"catalog-ingest/pkg/constants"
)

func newTestImportEngine(t *testing.T) (*ImportEngine, *fakeProductRepository, *fakeImportLogRepository) {
	t.Helper()
	products := newFakeProductRepository()
	logs := newFakeImportLogRepository()
	engine := NewImportEngine(products, logs, nil)
	return engine, products, logs
}

const csvHeader = "sku,name,price,stock_quantity,status\n"

func TestImportEngine_ValidateHeader_Valid(t *testing.T) {
	engine, _, _ := newTestImportEngine(t)

	result, err := engine.ValidateHeader(strings.NewReader(csvHeader))
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestImportEngine_ValidateHeader_MissingColumns(t *testing.T) {
	engine, _, _ := newTestImportEngine(t)

	result, err := engine.ValidateHeader(strings.NewReader("sku,name\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.MissingColumns, "price")
	assert.Contains(t, result.MissingColumns, "stock_quantity")
}

func TestImportEngine_Import_HappyPath(t *testing.T) {
	engine, products, logs := newTestImportEngine(t)
	ctx := context.Background()

	csv := csvHeader +
		"SKU-1,Widget,9.99,10,active\n" +
		"SKU-2,Gadget,19.99,5,active\n"

	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Invalid)
	assert.Equal(t, 100.0, result.SuccessRate)

	p1, err := products.FindBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, "Widget", p1.Name)

	log, err := logs.FindByID(ctx, result.ImportLogID)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, constants.ImportStatusCompleted, log.Status)
	assert.Equal(t, 2, log.ImportedRows)
}

func TestImportEngine_Import_UpdatesExistingBySKU(t *testing.T) {
	engine, products, _ := newTestImportEngine(t)
	ctx := context.Background()

	existing := newTestProductForImport("SKU-1", "Old Name")
	require.NoError(t, products.Create(ctx, existing))

	csv := csvHeader + "SKU-1,New Name,15.00,3,active\n"
	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Imported)

	found, err := products.FindBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
}

func TestImportEngine_Import_DuplicateWithoutUpdateExisting(t *testing.T) {
	engine, products, _ := newTestImportEngine(t)
	ctx := context.Background()

	existing := newTestProductForImport("SKU-1", "Old Name")
	require.NoError(t, products.Create(ctx, existing))

	opts := ImportOptions{SkipInvalid: true, UpdateExisting: false}
	csv := csvHeader + "SKU-1,New Name,15.00,3,active\n"
	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Updated)

	found, err := products.FindBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "Old Name", found.Name, "duplicate row must not overwrite the existing product")
}

func TestImportEngine_Import_SkipInvalidCollectsRowErrors(t *testing.T) {
	engine, _, logs := newTestImportEngine(t)
	ctx := context.Background()

	csv := csvHeader +
		"SKU-1,Widget,9.99,10,active\n" +
		"SKU-2,,19.99,5,active\n" +
		"SKU-3,Thing,not-a-number,1,active\n"

	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Invalid)
	require.Len(t, result.Errors, 2)

	log, err := logs.FindByID(ctx, result.ImportLogID)
	require.NoError(t, err)
	assert.Equal(t, constants.ImportStatusPartiallyCompleted, log.Status)
}

func TestImportEngine_Import_AbortsOnFirstInvalidWhenNotSkipping(t *testing.T) {
	engine, products, logs := newTestImportEngine(t)
	ctx := context.Background()

	opts := ImportOptions{SkipInvalid: false, UpdateExisting: true}
	csv := csvHeader +
		"SKU-1,,9.99,10,active\n" +
		"SKU-2,Gadget,19.99,5,active\n"

	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", opts)
	require.Error(t, err)
	assert.Nil(t, result)

	notCreated, lookupErr := products.FindBySKU(ctx, "SKU-2")
	require.NoError(t, lookupErr)
	assert.Nil(t, notCreated, "processing must stop before the second row is upserted")

	logsAll := logs.logs
	require.Len(t, logsAll, 1)
	for _, l := range logsAll {
		assert.Equal(t, constants.ImportStatusFailed, l.Status)
	}
}

func TestImportEngine_Import_ValidateOnlyDoesNotPersist(t *testing.T) {
	engine, products, logs := newTestImportEngine(t)
	ctx := context.Background()

	opts := ImportOptions{ValidateOnly: true, SkipInvalid: true}
	csv := csvHeader + "SKU-1,Widget,9.99,10,active\n"

	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	_, err = products.FindBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Empty(t, products.products, "validate_only must not create products")
	assert.Empty(t, logs.logs, "validate_only must not persist an import log")
}

func TestImportEngine_Import_MissingRequiredColumnsRejected(t *testing.T) {
	engine, _, _ := newTestImportEngine(t)
	ctx := context.Background()

	_, err := engine.Import(ctx, "bad.csv", strings.NewReader("sku,name\nSKU-1,Widget\n"), "filehash", DefaultImportOptions())
	require.Error(t, err)
}

// A primary_image that fails to resolve (the common case: an unrecognized
// string, per image_resolver.go's final validation branch) must not
// retroactively count an already-created/updated row as invalid -- the
// product write already succeeded and is reflected in Imported/Updated.
func TestImportEngine_Import_PrimaryImageResolutionFailureDoesNotDoubleCount(t *testing.T) {
	products := newFakeProductRepository()
	logs := newFakeImportLogRepository()
	resolver, _, _ := newTestImageResolver(t, nil)
	engine := NewImportEngine(products, logs, resolver)
	ctx := context.Background()

	csv := "sku,name,price,stock_quantity,status,primary_image\n" +
		"SKU-1,Widget,9.99,10,active,not-a-path-or-url\n"
	result, err := engine.Import(ctx, "products.csv", strings.NewReader(csv), "filehash", DefaultImportOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Invalid)
	assert.Empty(t, result.Errors)
	assert.LessOrEqual(t, result.Imported+result.Updated+result.Invalid+result.Duplicates, result.Total)

	p, err := products.FindBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.PrimaryImageID, "an unresolved primary_image must leave the product without an attached image")
}

func newTestProductForImport(sku, name string) *entities.Product {
	return &entities.Product{
		ID:            uuid.New(),
		SKU:           sku,
		Name:          name,
		Price:         decimal.NewFromFloat(5.00),
		StockQuantity: 1,
		Status:        constants.ProductStatusActive,
	}
}
