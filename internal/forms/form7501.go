// Package forms maps a computed duty breakdown onto the CBP Form 7501
// entry-summary field names expected by the downstream PDF filler.
package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
)

// Config holds the filer, importer and broker identity fields that are
// constant across entries. They come from configuration, never from the
// per-item input.
type Config struct {
	FilerCode      string
	EntryType      string
	PortCode       string
	BondType       string
	SuretyNumber   string
	TransportMode  string
	Carrier        string
	BillOfLading   string
	ManufacturerID string
	ForeignPort    string
	ImporterNumber string
	ImporterName   string
	ImporterStreet string
	ImporterCity   string
	ImporterState  string
	ImporterZip    string
	DeclarantName  string
	DeclarantTitle string
	BrokerName     string
	BrokerNumber   string
}

// DefaultConfig returns placeholder entry-summary identity values. Real
// deployments override these in configuration.
func DefaultConfig() Config {
	return Config{
		FilerCode:      "ABC",
		EntryType:      "01",
		PortCode:       "2704",
		BondType:       "1",
		SuretyNumber:   "123",
		TransportMode:  "11",
		Carrier:        "ABCD",
		BillOfLading:   "SHIP12345678",
		ManufacturerID: "CNLIP123456789",
		ForeignPort:    "CNSHA",
		ImporterNumber: "12-3456789",
		ImporterName:   "XYZ COSMETICS IMPORT CO.",
		ImporterStreet: "123 BEAUTY BLVD",
		ImporterCity:   "NEW YORK",
		ImporterState:  "NY",
		ImporterZip:    "10001",
		DeclarantName:  "John Smith",
		DeclarantTitle: "Import Manager",
		BrokerName:     "XYZ CUSTOMS BROKERS",
		BrokerNumber:   "ABC-123",
	}
}

// Populator renders the 7501 field map for one entry line item.
type Populator struct {
	cfg Config
	now func() time.Time
}

// NewPopulator creates a Populator with the given identity config.
func NewPopulator(cfg Config) *Populator {
	return &Populator{cfg: cfg, now: time.Now}
}

// WithClock overrides the date source. Tests use this for stable output.
func (p *Populator) WithClock(now func() time.Time) *Populator {
	p.now = now
	return p
}

// Populate builds the complete form field map for one item and its
// computed breakdown. The result is ready to hand to a PDF form filler;
// every value is already presentation-formatted.
func (p *Populator) Populate(item model.EntryItem, breakdown model.DutyLineItem) (map[string]string, error) {
	basicRate, err := parsePercent(item.BasicRate)
	if err != nil {
		return nil, fmt.Errorf("%w: basic_duty_rate %q", common.ErrInvalidInput, item.BasicRate)
	}
	remedyRate, err := parsePercent(item.RemedyRate)
	if err != nil {
		return nil, fmt.Errorf("%w: section_301_rate %q", common.ErrInvalidInput, item.RemedyRate)
	}
	otherRate, err := parsePercent(item.OtherRate)
	if err != nil {
		return nil, fmt.Errorf("%w: other_rate %q", common.ErrInvalidInput, item.OtherRate)
	}

	today := p.now().Format("01/02/2006")
	value := model.Amount(breakdown.EnteredValue)

	fields := map[string]string{
		// Entry header
		"filercode[0]":   p.cfg.FilerCode,
		"entrytype[0]":   p.cfg.EntryType,
		"summaryDate[0]": today,
		"portcode[0]":    p.cfg.PortCode,
		"entryDate[0]":   today,
		"importDate[0]":  today,

		// Bond
		"bondtype[0]": p.cfg.BondType,
		"suretyno[0]": p.cfg.SuretyNumber,

		// Transportation
		"mode[0]":        p.cfg.TransportMode,
		"impcarrier[0]":  p.cfg.Carrier,
		"bl[0]":          p.cfg.BillOfLading,
		"manid[0]":       p.cfg.ManufacturerID,
		"foreignport[0]": p.cfg.ForeignPort,
		"usport[0]":      p.cfg.PortCode,

		// Importer of record and consignee
		"importerno[0]": p.cfg.ImporterNumber,
		"consignno[0]":  p.cfg.ImporterNumber,
		"refno[0]":      fmt.Sprintf("PO-%s", p.now().Format("2006-0102")),

		"ultimateaddress1[0]": p.cfg.ImporterName,
		"ultimateaddress1[1]": p.cfg.ImporterStreet,
		"ultimateaddress1[2]": "",
		"city1[0]":            p.cfg.ImporterCity,
		"State[0]":            p.cfg.ImporterState,
		"zip1[0]":             p.cfg.ImporterZip,

		"importeraddress2[0]": p.cfg.ImporterName,
		"importeraddress2[1]": p.cfg.ImporterStreet,
		"importeraddress2[2]": "",
		"city2[0]":            p.cfg.ImporterCity,
		"State[1]":            p.cfg.ImporterState,
		"zip2[0]":             p.cfg.ImporterZip,

		// Column 28: merchandise description. Columns 29-34 have no
		// dedicated fields on the form, so the second description line
		// carries the HTS number, weight and quantities.
		"lineno1[0]":       "001",
		"descriptiona1[0]": item.Description,
		"descriptiona1[1]": fmt.Sprintf("%s                   %skg    %s             %s", item.HTSNumber, item.GrossWeight, item.ManifestQty, item.NetQuantity),
		"descriptionb1[1]": fmt.Sprintf("%s  N", value),
		"descriptionc1[1]": fmt.Sprintf("A: %.1f%% B: %.1f%% C: %.1f%% ", basicRate, remedyRate, otherRate),

		// Blocks 35-40: duty and fee totals
		"duty37[0]":  model.Amount(breakdown.TotalDuty()),
		"tax38[0]":   "0.0",
		"other39[0]": model.Amount(breakdown.TotalOtherFees()),
		"total40[0]": model.Amount(breakdown.TotalPayable()),

		"amount1[1]":        model.Amount(breakdown.TotalDuty()),
		"descriptiona1[2]":  "Merchandise Processing Fee",
		"amount1[2]":        model.Amount(breakdown.MerchandiseFee),
		"descriptiona1[3]":  "Harbor Maintenance Fee",
		"amount1[3]":        model.Amount(breakdown.HarborFee),
		"totalotherfees[0]": model.Amount(breakdown.TotalOtherFees()),
		"total35[0]":        value,

		// Declarant and broker
		"decname[0]":      p.cfg.DeclarantName,
		"title[0]":        p.cfg.DeclarantTitle,
		"lstdate[0]":      today,
		"brokerinfo[0]":   p.cfg.BrokerName,
		"brokernumber[0]": p.cfg.BrokerNumber,
	}

	return fields, nil
}

// parsePercent reads a rate expressed either as a bare number or with a
// trailing percent sign. Empty means zero.
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
