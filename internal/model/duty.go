package model

import (
	"fmt"
	"math"
)

// DutyLineItem is the fully itemized duty and fee breakdown for one entry.
// All amounts are kept unrounded; presentation rounding happens only at
// formatting time so rounding error never compounds across the sums.
type DutyLineItem struct {
	EnteredValue    float64
	BasicDuty       float64
	TradeRemedyDuty float64
	OtherDuty       float64
	MerchandiseFee  float64
	HarborFee       float64
}

// TotalDuty returns the sum of the three ad-valorem duty components.
func (d DutyLineItem) TotalDuty() float64 {
	return d.BasicDuty + d.TradeRemedyDuty + d.OtherDuty
}

// TotalOtherFees returns the combined government fees.
func (d DutyLineItem) TotalOtherFees() float64 {
	return d.MerchandiseFee + d.HarborFee
}

// TotalPayable returns duty plus fees, always recomputed from the
// components so total = duty + fees holds by construction.
func (d DutyLineItem) TotalPayable() float64 {
	return d.TotalDuty() + d.TotalOtherFees()
}

// Amount formats a monetary value as a 2-decimal string for presentation.
func Amount(v float64) string {
	return fmt.Sprintf("%.2f", math.Round(v*100)/100)
}

// EntryItem carries the static entry metadata the form populator needs in
// addition to the computed breakdown. The core never computes these.
type EntryItem struct {
	ID          string `json:"id"`
	HTSNumber   string `json:"hts_number"`
	Origin      string `json:"country_of_origin"`
	Description string `json:"description"`
	Value       string `json:"value"`
	BasicRate   string `json:"basic_duty_rate"`
	RemedyRate  string `json:"section_301_rate"`
	OtherRate   string `json:"other_rate"`
	GrossWeight string `json:"gross_weight"`
	ManifestQty string `json:"manifest_qty"`
	NetQuantity string `json:"net_quantity"`
}
