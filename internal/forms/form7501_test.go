package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marhaven/tariffdesk/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}

func TestPopulateFieldValues(t *testing.T) {
	p := NewPopulator(DefaultConfig()).WithClock(fixedClock)

	item := model.EntryItem{
		ID:          "1",
		HTSNumber:   "3304.99.50.00",
		Origin:      "CN",
		Description: "Facial cream",
		Value:       "10000.00",
		BasicRate:   "2.5",
		RemedyRate:  "7.5",
		OtherRate:   "30",
		GrossWeight: "10.00",
		ManifestQty: "100",
		NetQuantity: "100",
	}
	breakdown := model.DutyLineItem{
		EnteredValue:    10000,
		BasicDuty:       250,
		TradeRemedyDuty: 750,
		OtherDuty:       3000,
		MerchandiseFee:  34.64,
		HarborFee:       12.50,
	}

	fields, err := p.Populate(item, breakdown)
	require.NoError(t, err)

	assert.Equal(t, "4000.00", fields["duty37[0]"])
	assert.Equal(t, "0.0", fields["tax38[0]"])
	assert.Equal(t, "47.14", fields["other39[0]"])
	assert.Equal(t, "4047.14", fields["total40[0]"])
	assert.Equal(t, "10000.00", fields["total35[0]"])

	assert.Equal(t, "4000.00", fields["amount1[1]"])
	assert.Equal(t, "Merchandise Processing Fee", fields["descriptiona1[2]"])
	assert.Equal(t, "34.64", fields["amount1[2]"])
	assert.Equal(t, "Harbor Maintenance Fee", fields["descriptiona1[3]"])
	assert.Equal(t, "12.50", fields["amount1[3]"])
	assert.Equal(t, "47.14", fields["totalotherfees[0]"])

	assert.Equal(t, "Facial cream", fields["descriptiona1[0]"])
	assert.Contains(t, fields["descriptiona1[1]"], "3304.99.50.00")
	assert.Contains(t, fields["descriptiona1[1]"], "10.00kg")
	assert.Equal(t, "10000.00  N", fields["descriptionb1[1]"])
	assert.Equal(t, "A: 2.5% B: 7.5% C: 30.0% ", fields["descriptionc1[1]"])

	assert.Equal(t, "06/15/2025", fields["summaryDate[0]"])
	assert.Equal(t, "06/15/2025", fields["entryDate[0]"])
	assert.Equal(t, "PO-2025-0615", fields["refno[0]"])
}

func TestPopulateIdentityFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImporterName = "ACME TRADING LLC"
	cfg.ImporterNumber = "98-7654321"
	cfg.PortCode = "1001"

	p := NewPopulator(cfg).WithClock(fixedClock)
	fields, err := p.Populate(model.EntryItem{BasicRate: "0", RemedyRate: "0", OtherRate: "0"}, model.DutyLineItem{})
	require.NoError(t, err)

	assert.Equal(t, "ACME TRADING LLC", fields["ultimateaddress1[0]"])
	assert.Equal(t, "ACME TRADING LLC", fields["importeraddress2[0]"])
	assert.Equal(t, "98-7654321", fields["importerno[0]"])
	assert.Equal(t, "98-7654321", fields["consignno[0]"])
	assert.Equal(t, "1001", fields["portcode[0]"])
	assert.Equal(t, "1001", fields["usport[0]"])
	assert.Equal(t, "001", fields["lineno1[0]"])
}

func TestPopulateRateParsing(t *testing.T) {
	p := NewPopulator(DefaultConfig()).WithClock(fixedClock)

	tests := []struct {
		name    string
		item    model.EntryItem
		want    string
		wantErr bool
	}{
		{
			name: "percent suffix tolerated",
			item: model.EntryItem{BasicRate: "2.5%", RemedyRate: "7.5%", OtherRate: "30%"},
			want: "A: 2.5% B: 7.5% C: 30.0% ",
		},
		{
			name: "empty rates mean zero",
			item: model.EntryItem{},
			want: "A: 0.0% B: 0.0% C: 0.0% ",
		},
		{
			name:    "garbage rate rejected",
			item:    model.EntryItem{BasicRate: "free"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := p.Populate(tt.item, model.DutyLineItem{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields["descriptionc1[1]"])
		})
	}
}
