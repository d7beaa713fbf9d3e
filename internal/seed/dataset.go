package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/albapepper/consumer-insights/internal/retail"
	"github.com/albapepper/consumer-insights/internal/validation"
)

// Dataset is the JSON document accepted by `insights seed`.
type Dataset struct {
	Consumers []retail.Consumer `json:"consumers" validate:"dive"`
	Products  []retail.Product  `json:"products" validate:"dive"`
	Orders    []retail.Order    `json:"orders" validate:"dive"`
}

// LoadFile reads and decodes a dataset file.
func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a dataset, rejecting unknown fields.
func Decode(r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// Validate checks field constraints and references. Hard failures are
// returned as an error; orders pointing at products missing from the
// dataset are only reported in the returned warnings, since the engine
// skips unknown products.
func (ds Dataset) Validate() (warnings []string, err error) {
	if err := validation.Struct(ds); err != nil {
		return nil, err
	}

	var problems []error
	consumerIDs := make(map[int]bool, len(ds.Consumers))
	for _, c := range ds.Consumers {
		if consumerIDs[c.ID] {
			problems = append(problems, fmt.Errorf("duplicate consumer id %d", c.ID))
		}
		consumerIDs[c.ID] = true
	}
	productIDs := make(map[int]bool, len(ds.Products))
	for _, p := range ds.Products {
		if productIDs[p.ID] {
			problems = append(problems, fmt.Errorf("duplicate product id %d", p.ID))
		}
		productIDs[p.ID] = true
	}
	orderIDs := make(map[int]bool, len(ds.Orders))
	for _, o := range ds.Orders {
		if orderIDs[o.ID] {
			problems = append(problems, fmt.Errorf("duplicate order id %d", o.ID))
		}
		orderIDs[o.ID] = true
		if !consumerIDs[o.ConsumerID] {
			problems = append(problems, fmt.Errorf("order %d references unknown consumer %d", o.ID, o.ConsumerID))
		}
		if !productIDs[o.ProductID] {
			warnings = append(warnings, fmt.Sprintf("order %d references product %d not in dataset", o.ID, o.ProductID))
		}
	}
	if len(problems) > 0 {
		return warnings, fmt.Errorf("invalid dataset: %w", errors.Join(problems...))
	}
	return warnings, nil
}
