package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/marhaven/tariffdesk/internal/common"
	"github.com/marhaven/tariffdesk/internal/model"
	"github.com/marhaven/tariffdesk/internal/service"
)

const defaultUSTRSearchURL = "https://ustr.gov/issue-areas/enforcement/section-301-investigations/search"

// percentToken matches the first percentage-like token in search-result text.
var percentToken = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// TradeRemedySource looks a classification code up on the trade
// representative's investigation-search page and extracts the first
// percentage-like token from the result. Absent a match the rate is 0;
// that is a successful lookup, not a failure.
type TradeRemedySource struct {
	httpClient *http.Client
	searchURL  string
}

// NewTradeRemedySource creates the source. An empty searchURL uses the
// government search page.
func NewTradeRemedySource(searchURL string) *TradeRemedySource {
	if searchURL == "" {
		searchURL = defaultUSTRSearchURL
	}
	return &TradeRemedySource{
		searchURL: searchURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements service.RateSource.
func (s *TradeRemedySource) Name() string {
	return model.SourceTradeRemedy
}

// Lookup runs the search and extracts the additional duty rate.
func (s *TradeRemedySource) Lookup(ctx context.Context, code, _ string) (service.RateResult, error) {
	u, err := url.Parse(s.searchURL)
	if err != nil {
		return service.RateResult{}, fmt.Errorf("invalid search URL: %w", err)
	}
	q := u.Query()
	q.Set("search", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return service.RateResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return service.RateResult{}, fmt.Errorf("%w: search request failed: %v", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return service.RateResult{}, fmt.Errorf("%w: search returned status %d", common.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return service.RateResult{}, fmt.Errorf("failed to read search result: %w", err)
	}

	m := percentToken.FindSubmatch(body)
	if m == nil {
		return service.RateResult{Rate: 0, Note: "no percentage found in search result"}, nil
	}

	rate, err := parseRate(string(m[1]))
	if err != nil {
		return service.RateResult{}, err
	}

	return service.RateResult{Rate: rate, Note: "USTR Section 301 Investigation"}, nil
}
