package brochure

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/brochureworker/internal/dates"
)

func TestNew(t *testing.T) {
	discovered := time.Date(2025, 3, 25, 14, 5, 9, 0, time.Local)
	record := New("Wochenangebote", "https://img.example/1.jpg", "Kaufland", dates.Window{From: "2025-03-23"}, discovered)

	assert.Equal(t, "Wochenangebote", record.Title)
	assert.Equal(t, "Kaufland", record.ShopName)
	require.NotNil(t, record.ValidFrom)
	assert.Equal(t, "2025-03-23", *record.ValidFrom)
	assert.Nil(t, record.ValidTo)
	assert.Equal(t, "2025-03-25 14:05:09", record.ParsedTime)
	assert.Equal(t, dates.Window{From: "2025-03-23"}, record.Window())
}

func TestRecordJSON(t *testing.T) {
	discovered := time.Date(2025, 3, 25, 8, 0, 0, 0, time.Local)
	record := New("Prospekt", "", "Kaufland", dates.Window{To: "29.03.2025"}, discovered)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Equal(t,
		`{"title":"Prospekt","thumbnail":"","shop_name":"Kaufland","valid_from":null,"valid_to":"29.03.2025","parsed_time":"2025-03-25 08:00:00"}`,
		string(data))
}
