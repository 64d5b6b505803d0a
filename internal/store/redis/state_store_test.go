package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
)

func TestDecodeRecord(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	encode := func(t *testing.T, rec domain.StateRecord) []byte {
		t.Helper()
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	tests := []struct {
		name string
		data []byte
		keep bool
	}{
		{
			name: "fresh record",
			data: encode(t, domain.StateRecord{SavedAt: now.Add(-10 * time.Minute)}),
			keep: true,
		},
		{
			name: "saved exactly at the window edge",
			data: encode(t, domain.StateRecord{SavedAt: now.Add(-time.Hour)}),
			keep: true,
		},
		{
			name: "older than the staleness window",
			data: encode(t, domain.StateRecord{SavedAt: now.Add(-time.Hour - time.Minute)}),
			keep: false,
		},
		{
			name: "zero saved_at",
			data: encode(t, domain.StateRecord{}),
			keep: false,
		},
		{
			name: "malformed json",
			data: []byte(`{"armed":[`),
			keep: false,
		},
		{
			name: "wrong field type",
			data: []byte(`{"saved_at":42}`),
			keep: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := decodeRecord(tt.data, now, defaultStaleness)
			if tt.keep && rec == nil {
				t.Fatalf("record discarded: %s", reason)
			}
			if !tt.keep {
				if rec != nil {
					t.Fatal("expected record to be discarded")
				}
				if reason == "" {
					t.Error("discard without a reason")
				}
			}
		})
	}
}

func TestDecodeRecordPreservesFields(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	in := domain.StateRecord{
		Armed: []domain.ArmedEntry{
			{Price: domain.ToMicros(2005.00), Intent: domain.OrderIntent{Side: domain.SideBuy, Qty: 2}},
		},
		Trades:  []domain.Trade{{ID: "t1", Side: domain.SideBuy, Qty: 2}},
		SavedAt: now,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	rec, reason := decodeRecord(data, now, defaultStaleness)
	if rec == nil {
		t.Fatalf("record discarded: %s", reason)
	}
	if len(rec.Armed) != 1 || rec.Armed[0].Price != in.Armed[0].Price {
		t.Errorf("armed = %+v, want %+v", rec.Armed, in.Armed)
	}
	if len(rec.Trades) != 1 || rec.Trades[0].ID != "t1" {
		t.Errorf("trades = %+v, want %+v", rec.Trades, in.Trades)
	}
}
