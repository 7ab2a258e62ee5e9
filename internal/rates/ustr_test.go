package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marhaven/tariffdesk/internal/common"
)

func TestTradeRemedyLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9401.61.0000", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`<div id="documents">
			Notice of Action: additional duties of 7.5% on products of China
		</div>`))
	}))
	defer server.Close()

	source := NewTradeRemedySource(server.URL)

	res, err := source.Lookup(context.Background(), "9401.61.0000", "")
	require.NoError(t, err)
	assert.InDelta(t, 7.5, res.Rate, 1e-9)
}

func TestTradeRemedyLookupNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div id="documents">No results found.</div>`))
	}))
	defer server.Close()

	source := NewTradeRemedySource(server.URL)

	res, err := source.Lookup(context.Background(), "0101.21.0000", "")
	require.NoError(t, err, "absent percentage is a zero rate, not a failure")
	assert.Zero(t, res.Rate)
	assert.Contains(t, res.Note, "no percentage found")
}

func TestTradeRemedyLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewTradeRemedySource(server.URL)

	_, err := source.Lookup(context.Background(), "9401.61.0000", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.ErrorIs(t, err, common.ErrSourceUnavailable)
}

func TestTradeRemedyLookupUnreachable(t *testing.T) {
	source := NewTradeRemedySource("http://127.0.0.1:1")

	_, err := source.Lookup(context.Background(), "9401.61.0000", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSourceUnavailable)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "7.5", want: 7.5},
		{in: "7.5%", want: 7.5},
		{in: " 25 % ", want: 25},
		{in: "0", want: 0},
		{in: "seven", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseRate(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}
