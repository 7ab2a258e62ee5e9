// Package model defines the core domain types shared across the application.
package model

// TariffRecord is a single entry of the harmonized tariff catalog: a
// classification code, its textual description, the statutory base-rate
// expression exactly as published, and the precomputed embedding vector for
// semantic search. Records are immutable once the catalog is loaded.
type TariffRecord struct {
	Code        string    `json:"htsno"`
	Description string    `json:"description"`
	BaseRate    string    `json:"general"`
	Embedding   []float32 `json:"embedding"`
}

// MatchCandidate is one ranked result of a semantic catalog search.
type MatchCandidate struct {
	Code        string  `json:"hs_code"`
	Description string  `json:"description"`
	BaseRate    float64 `json:"general_rate"`
	Score       float64 `json:"similarity_score"`
}
