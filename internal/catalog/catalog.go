// Package catalog holds the in-memory harmonized tariff catalog and its
// loaders. The catalog is built once at startup and is read-only afterward,
// so concurrent readers need no synchronization.
package catalog

import (
	"fmt"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
)

// Catalog is an immutable collection of tariff records with an index by
// classification code. Iteration order is the load order of the records.
type Catalog struct {
	byCode    map[string]int
	records   []model.TariffRecord
	dimension int
}

// New builds a catalog from the given records. Records without an embedding
// are rejected; duplicate codes keep the first occurrence. All embeddings
// must share one dimensionality.
func New(records []model.TariffRecord) (*Catalog, error) {
	c := &Catalog{
		byCode: make(map[string]int, len(records)),
	}

	for _, rec := range records {
		if len(rec.Embedding) == 0 {
			return nil, fmt.Errorf("record %s: %w: missing embedding", rec.Code, common.ErrInvalidConfig)
		}
		if c.dimension == 0 {
			c.dimension = len(rec.Embedding)
		} else if len(rec.Embedding) != c.dimension {
			return nil, fmt.Errorf("record %s: %w: vector dim %d, catalog dim %d",
				rec.Code, common.ErrDimensionMismatch, len(rec.Embedding), c.dimension)
		}
		if _, exists := c.byCode[rec.Code]; exists {
			continue
		}
		c.byCode[rec.Code] = len(c.records)
		c.records = append(c.records, rec)
	}

	return c, nil
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Dimension returns the embedding dimensionality the catalog was built
// with, or 0 for an empty catalog.
func (c *Catalog) Dimension() int {
	return c.dimension
}

// Records returns the catalog records in load order. Callers must not
// mutate the returned slice.
func (c *Catalog) Records() []model.TariffRecord {
	return c.records
}

// Lookup returns the record for a classification code.
func (c *Catalog) Lookup(code string) (model.TariffRecord, error) {
	idx, ok := c.byCode[code]
	if !ok {
		return model.TariffRecord{}, fmt.Errorf("code %s: %w", code, common.ErrNotFound)
	}
	return c.records[idx], nil
}

// BaseRate returns the parsed numeric base rate for a code, or 0 with
// found=false when the code is not in the catalog.
func (c *Catalog) BaseRate(code string) (rate float64, found bool) {
	rec, err := c.Lookup(code)
	if err != nil {
		return 0, false
	}
	return ExtractRate(rec.BaseRate), true
}
