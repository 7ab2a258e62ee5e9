package model

// Rate source names as they appear in provenance entries and API responses.
const (
	SourceBaseRate    = "Basic duty rate"
	SourceTradeRemedy = "Section 301 tariff"
	SourceEmergency   = "IEEPA tariff"
	SourceReciprocal  = "Reciprocal tariff"
)

// SourceResult records what a single rate source contributed to an
// aggregated rate set. A failed source is a first-class outcome: it
// contributes a zero rate and keeps its slot in the provenance list.
type SourceResult struct {
	Name      string  `json:"name"`
	Note      string  `json:"note,omitempty"`
	Rate      float64 `json:"rate"`
	Succeeded bool    `json:"succeeded"`
}

// RateSet is the combined outcome of one rate aggregation run: the base
// rate plus every external source's contribution, with provenance. It is
// rebuilt per query and never cached across queries; the external signals
// are time-varying.
type RateSet struct {
	Code            string         `json:"hs_code"`
	Description     string         `json:"description,omitempty"`
	Country         string         `json:"country_of_origin"`
	Status          string         `json:"status"`
	Sources         []SourceResult `json:"sources"`
	BaseRate        float64        `json:"general_rate"`
	TradeRemedyRate float64        `json:"section_301_rate"`
	EmergencyRate   float64        `json:"ieepa_rate"`
	ReciprocalRate  float64        `json:"reciprocal_rate"`
}

// TotalRate returns the sum of every contributing rate. It is always
// recomputed from the components so the total can never drift from them.
func (r *RateSet) TotalRate() float64 {
	return r.BaseRate + r.TradeRemedyRate + r.EmergencyRate + r.ReciprocalRate
}

// SurchargeRate returns the combined legal-authority surcharges layered on
// top of the base and trade-remedy rates.
func (r *RateSet) SurchargeRate() float64 {
	return r.EmergencyRate + r.ReciprocalRate
}
