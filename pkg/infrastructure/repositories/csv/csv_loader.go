package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/infrastructure/repositories/memory"
)

var productHeader = []string{
	"id", "name", "category", "unit", "current_stock", "min_stock_level",
	"lead_time_days", "burn_rate", "unit_cost", "contract_supplier", "contract_price",
}

// Loader reads offline seed data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProducts loads the seed catalog from a CSV file
func (l *Loader) LoadProducts(filename string) ([]memory.SeedProduct, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open products file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadProducts(file)
}

// ReadProducts parses the seed catalog. The contract columns may be left
// empty for products bought without a contract.
func (l *Loader) ReadProducts(r io.Reader) ([]memory.SeedProduct, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read products CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("products CSV must have header and at least one data row")
	}

	header := records[0]
	if !validateHeader(header, productHeader) {
		return nil, fmt.Errorf("products CSV header mismatch. Expected: %v, Got: %v", productHeader, header)
	}

	seen := make(map[entities.ProductID]bool)
	var products []memory.SeedProduct
	for i, record := range records[1:] {
		if len(record) != len(productHeader) {
			return nil, fmt.Errorf("products CSV row %d: expected %d columns, got %d", i+2, len(productHeader), len(record))
		}

		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		if seen[product.Product.ID] {
			return nil, fmt.Errorf("products CSV row %d: duplicate id %d", i+2, product.Product.ID)
		}
		seen[product.Product.ID] = true

		products = append(products, product)
	}

	return products, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseProduct(record []string) (memory.SeedProduct, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return memory.SeedProduct{}, fmt.Errorf("invalid id: %s", record[0])
	}

	currentStock, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return memory.SeedProduct{}, fmt.Errorf("invalid current_stock: %s", record[4])
	}

	minStock, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return memory.SeedProduct{}, fmt.Errorf("invalid min_stock_level: %s", record[5])
	}

	leadTime := entities.DefaultLeadTimeDays
	if record[6] != "" {
		leadTime, err = strconv.Atoi(record[6])
		if err != nil {
			return memory.SeedProduct{}, fmt.Errorf("invalid lead_time_days: %s", record[6])
		}
	}

	burnRate, err := strconv.ParseFloat(record[7], 64)
	if err != nil {
		return memory.SeedProduct{}, fmt.Errorf("invalid burn_rate: %s", record[7])
	}

	unitCost, err := decimal.NewFromString(record[8])
	if err != nil {
		return memory.SeedProduct{}, fmt.Errorf("invalid unit_cost: %s", record[8])
	}

	product, err := entities.NewProduct(entities.ProductID(id), record[1], record[2], record[3], currentStock, minStock, leadTime)
	if err != nil {
		return memory.SeedProduct{}, err
	}

	if record[9] != "" {
		price, err := decimal.NewFromString(record[10])
		if err != nil {
			return memory.SeedProduct{}, fmt.Errorf("invalid contract_price: %s", record[10])
		}
		product.ActiveContract = &entities.ContractInfo{SupplierName: record[9], Price: price}
	}

	return memory.SeedProduct{
		Product:  *product,
		BurnRate: burnRate,
		UnitCost: unitCost,
	}, nil
}
