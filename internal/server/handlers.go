package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/duty"
	"github.com/marhaven/tariffdesk/internal/forms"
	"github.com/marhaven/tariffdesk/internal/matcher"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/rates"
)

// Handler holds the pipeline components the API endpoints dispatch to.
type Handler struct {
	Catalog       *catalog.Catalog
	Matcher       *matcher.Matcher
	Aggregator    *rates.Aggregator
	Calculator    *duty.Calculator
	Populator     *forms.Populator
	SourceTimeout time.Duration
	Logger        *slog.Logger
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

// SearchResponse lists ranked catalog candidates for a query.
type SearchResponse struct {
	Query      string                 `json:"query"`
	Candidates []model.MatchCandidate `json:"candidates"`
}

// RatesRequest is the body of POST /api/rates.
type RatesRequest struct {
	Code        string `json:"hs_code"`
	Description string `json:"description"`
	Country     string `json:"country_of_origin"`
}

// RatesResponse wraps the aggregated rate set with its recomputed total.
type RatesResponse struct {
	*model.RateSet
	TotalRate float64 `json:"total_rate"`
}

// DutyRequest is the body of POST /api/duty. Rates are percentages.
type DutyRequest struct {
	Value      float64 `json:"value"`
	BasicRate  float64 `json:"basic_duty_rate"`
	RemedyRate float64 `json:"section_301_rate"`
	OtherRate  float64 `json:"other_rate"`
}

// DutyResponse itemizes the computed duties and fees, each amount as a
// 2-decimal string.
type DutyResponse struct {
	EnteredValue    string `json:"entered_value"`
	BasicDuty       string `json:"basic_duty"`
	TradeRemedyDuty string `json:"section_301_duty"`
	OtherDuty       string `json:"other_duty"`
	TotalDuty       string `json:"total_duty"`
	MerchandiseFee  string `json:"merchandise_processing_fee"`
	HarborFee       string `json:"harbor_maintenance_fee"`
	TotalOtherFees  string `json:"total_other_fees"`
	TotalPayable    string `json:"total_payable"`
}

// FormResponse carries the populated 7501 field map alongside the
// breakdown it was built from.
type FormResponse struct {
	Fields    map[string]string `json:"fields"`
	Breakdown DutyResponse      `json:"breakdown"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search ranks catalog entries against a free-text product description.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}
	if req.TopN <= 0 {
		req.TopN = 3
	}

	candidates, err := h.Matcher.Match(r.Context(), req.Query, req.TopN)
	if err != nil {
		h.Logger.Error("search failed", "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: req.Query, Candidates: candidates})
}

// Rates aggregates the applicable tariff rates for a classification.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	var req RatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, errors.New("hs_code is required"))
		return
	}
	if req.Country == "" {
		req.Country = "CN"
	}

	ctx := r.Context()
	if h.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SourceTimeout)
		defer cancel()
	}

	set := h.Aggregator.Aggregate(ctx, req.Code, req.Description, req.Country)
	writeJSON(w, http.StatusOK, RatesResponse{RateSet: set, TotalRate: set.TotalRate()})
}

// Duty computes the itemized duty and fee breakdown for an entered value.
func (h *Handler) Duty(w http.ResponseWriter, r *http.Request) {
	var req DutyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := h.Calculator.Compute(req.Value, req.BasicRate, req.RemedyRate, req.OtherRate)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, dutyResponse(item))
}

// Form computes the breakdown for one entry item and renders the form
// field map the PDF filler consumes.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	var req model.EntryItem
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(req.Value), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("value must be numeric"))
		return
	}
	basic, remedy, other, err := parseItemRates(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	breakdown, err := h.Calculator.Compute(value, basic, remedy, other)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	fields, err := h.Populator.Populate(req, breakdown)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, FormResponse{Fields: fields, Breakdown: dutyResponse(breakdown)})
}

// Health reports liveness and basic catalog stats.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"catalog_records":     h.Catalog.Len(),
		"embedding_dimension": h.Catalog.Dimension(),
	})
}

func dutyResponse(item model.DutyLineItem) DutyResponse {
	return DutyResponse{
		EnteredValue:    model.Amount(item.EnteredValue),
		BasicDuty:       model.Amount(item.BasicDuty),
		TradeRemedyDuty: model.Amount(item.TradeRemedyDuty),
		OtherDuty:       model.Amount(item.OtherDuty),
		TotalDuty:       model.Amount(item.TotalDuty()),
		MerchandiseFee:  model.Amount(item.MerchandiseFee),
		HarborFee:       model.Amount(item.HarborFee),
		TotalOtherFees:  model.Amount(item.TotalOtherFees()),
		TotalPayable:    model.Amount(item.TotalPayable()),
	}
}

func parseItemRates(item model.EntryItem) (basic, remedy, other float64, err error) {
	parse := func(field, s string) (float64, error) {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.New(field + " must be numeric")
		}
		return v, nil
	}
	if basic, err = parse("basic_duty_rate", item.BasicRate); err != nil {
		return
	}
	if remedy, err = parse("section_301_rate", item.RemedyRate); err != nil {
		return
	}
	other, err = parse("other_rate", item.OtherRate)
	return
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrEmptyCatalog), errors.Is(err, common.ErrDimensionMismatch),
		errors.Is(err, common.ErrMissingConfig), errors.Is(err, common.ErrInvalidConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
