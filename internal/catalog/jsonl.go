package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/marhaven/tariffdesk/internal/model"
)

// maxLineSize bounds a single JSONL line. Embedding vectors for the
// catalog's sentence model run to a few hundred KB of JSON.
const maxLineSize = 4 << 20

// ReadJSONL decodes tariff records from a JSONL embedding dump, one record
// per line. Lines without an embedding field are skipped; they are catalog
// headings with no classifiable payload.
func ReadJSONL(r io.Reader) ([]model.TariffRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var records []model.TariffRecord
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec model.TariffRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec.Embedding) == 0 {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	return records, nil
}

// LoadJSONL reads a JSONL embedding dump from disk and builds a catalog.
func LoadJSONL(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return New(records)
}
