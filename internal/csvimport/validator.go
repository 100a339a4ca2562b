package csvimport

import (
	"fmt"

	"github.com/shopspring/decimal"

	"catalog-ingest/pkg/constants"
)

// ValidatedRow is a Row that has passed every per-field check and is
// ready to be upserted as a Product.
type ValidatedRow struct {
	Number        int
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Status        string
	PrimaryImage  string
}

var validProductStatuses = map[string]bool{
	constants.ProductStatusActive:       true,
	constants.ProductStatusInactive:     true,
	constants.ProductStatusDiscontinued: true,
}

// Validate checks row against the per-field rules and returns either a
// ValidatedRow or the list of field error messages collected.
func Validate(row *Row) (*ValidatedRow, []string) {
	var errs []string

	sku := row.Fields["sku"]
	if sku == "" {
		errs = append(errs, "sku: must not be empty")
	}

	name := row.Fields["name"]
	if name == "" {
		errs = append(errs, "name: must not be empty")
	}

	price, priceErr := decimal.NewFromString(row.Fields["price"])
	if priceErr != nil {
		errs = append(errs, "price: must be numeric")
	}

	stockQuantity, stockErr := parseNonNegativeInt(row.Fields["stock_quantity"])
	if stockErr != nil {
		errs = append(errs, fmt.Sprintf("stock_quantity: %v", stockErr))
	}

	status := row.Fields["status"]
	if status == "" {
		status = constants.ProductStatusActive
	} else if !validProductStatuses[status] {
		errs = append(errs, "status: must be one of active, inactive, discontinued")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &ValidatedRow{
		Number:        row.Number,
		SKU:           sku,
		Name:          name,
		Description:   row.Fields["description"],
		Price:         price.Round(2),
		StockQuantity: stockQuantity,
		Status:        status,
		PrimaryImage:  row.Fields["primary_image"],
	}, nil
}

func parseNonNegativeInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("must be an integer")
	}

	n := 0
	negative := false
	for i, c := range s {
		if i == 0 && c == '-' {
			negative = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("must be an integer")
		}
		n = n*10 + int(c-'0')
	}
	if negative {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}
