package points

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	schemaURL = "receipt.schema.json"
)

// ErrInvalidReceipt is returned for every validation failure. The cause is
// wrapped alongside it for logging but callers should only test for this.
var ErrInvalidReceipt = errors.New("receipt is invalid")

//go:embed receipt.schema.json
var receiptSchema []byte

// Validator checks receipt payloads against the receipt schema and calendar
// rules. It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded receipt schema
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(receiptSchema)); err != nil {
		return nil, fmt.Errorf("adding receipt schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling receipt schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate decodes a JSON payload and validates it
func (v *Validator) Validate(data []byte) (*Receipt, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding json: %w", ErrInvalidReceipt, err)
	}
	return v.ValidateValue(payload)
}

// ValidateValue validates an already decoded JSON value, as produced by
// json.Unmarshal into an any.
func (v *Validator) ValidateValue(payload any) (*Receipt, error) {
	if err := v.schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReceipt, err)
	}

	receipt := fromTree(payload)

	date, err := time.Parse(dateLayout, receipt.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase date: %w", ErrInvalidReceipt, err)
	}
	if date.Year() < 1 {
		return nil, fmt.Errorf("%w: purchase date: year %d out of range", ErrInvalidReceipt, date.Year())
	}
	if _, err := time.Parse(timeLayout, receipt.PurchaseTime); err != nil {
		return nil, fmt.Errorf("%w: purchase time: %w", ErrInvalidReceipt, err)
	}

	return receipt, nil
}

// fromTree copies a schema-valid payload into a Receipt. The schema
// guarantees every assertion below.
func fromTree(payload any) *Receipt {
	obj := payload.(map[string]any)
	rawItems := obj["items"].([]any)

	items := make([]Item, 0, len(rawItems))
	for _, raw := range rawItems {
		item := raw.(map[string]any)
		items = append(items, Item{
			ShortDescription: item["shortDescription"].(string),
			Price:            item["price"].(string),
		})
	}

	return &Receipt{
		Retailer:     obj["retailer"].(string),
		PurchaseDate: obj["purchaseDate"].(string),
		PurchaseTime: obj["purchaseTime"].(string),
		Items:        items,
		Total:        obj["total"].(string),
	}
}
