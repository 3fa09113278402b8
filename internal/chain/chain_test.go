package chain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlatRows(t *testing.T) {
	entries := []RawEntry{
		{ExpirationDate: "2025-01-17", Strike: 100, Type: "CALL", LastPrice: 2.5, Volume: 10},
		{ExpirationDate: "2025-01-17", StrikePrice: 105, Type: "put", LastPrice: 1.0, Volume: 4},
	}

	rows := Normalize(entries)
	require.Len(t, rows, 2)

	assert.Equal(t, Call, rows[0].Side)
	assert.Equal(t, 100.0, rows[0].Strike)
	assert.Equal(t, int64(10), rows[0].Volume)

	// strikePrice alias and lowercase type both resolve
	assert.Equal(t, Put, rows[1].Side)
	assert.Equal(t, 105.0, rows[1].Strike)
}

func TestNormalizeNestedBuckets(t *testing.T) {
	entries := []RawEntry{
		{
			ExpirationDate: "2025-02-21",
			Options: &RawBuckets{
				Call: []RawEntry{{Strike: 50, LastPrice: 3.0, Volume: 7}},
				Put:  []RawEntry{{Strike: 50, LastPrice: 2.0, Volume: 9}},
			},
		},
	}

	rows := Normalize(entries)
	require.Len(t, rows, 2)

	// side comes from the bucket, expiration from the block
	assert.Equal(t, Call, rows[0].Side)
	assert.Equal(t, Put, rows[1].Side)
	assert.Equal(t, "2025-02-21", rows[0].ExpirationDate)
	assert.Equal(t, "2025-02-21", rows[1].ExpirationDate)
}

func TestNormalizeRowLevelFieldsWin(t *testing.T) {
	entries := []RawEntry{
		{
			ExpirationDate: "2025-02-21",
			Options: &RawBuckets{
				Call: []RawEntry{{ExpirationDate: "2025-03-21", Strike: 60, Type: "PUT"}},
			},
		},
	}

	rows := Normalize(entries)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-21", rows[0].ExpirationDate)
	assert.Equal(t, Put, rows[0].Side)
}

func TestNormalizeDropsMalformedRows(t *testing.T) {
	entries := []RawEntry{
		{ExpirationDate: "2025-01-17", Type: "CALL"},        // no strike
		{Strike: 100, Type: "CALL"},                         // no expiration
		{ExpirationDate: "2025-01-17", Strike: 100},         // no side resolvable
		{ExpirationDate: "2025-01-17", Strike: -5, Type: "CALL"},
		{ExpirationDate: "2025-01-17", Strike: 100, Type: "CALL"}, // good
	}

	rows := Normalize(entries)
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].Strike)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]RawEntry{}))
}

func TestNormalizeFinnhubJSON(t *testing.T) {
	payload := `[
		{"expirationDate":"2025-01-17","options":{
			"CALL":[{"strike":150,"lastPrice":2.1,"bid":2.0,"ask":2.2,"volume":12,"openInterest":340,"impliedVolatility":0.42}],
			"PUT":[{"strike":150,"lastPrice":1.4,"volume":6}]
		}}
	]`

	var entries []RawEntry
	require.NoError(t, json.Unmarshal([]byte(payload), &entries))

	rows := Normalize(entries)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.1, rows[0].LastPrice)
	assert.Equal(t, int64(340), rows[0].OpenInterest)
	assert.Equal(t, 0.42, rows[0].ImpliedVolatility)
}

func TestExpirationsSortedUnique(t *testing.T) {
	rows := []OptionRow{
		{ExpirationDate: "2025-03-21", Strike: 1, Side: Call},
		{ExpirationDate: "2025-01-17", Strike: 1, Side: Call},
		{ExpirationDate: "2025-03-21", Strike: 2, Side: Put},
		{ExpirationDate: "2025-02-21", Strike: 1, Side: Put},
	}

	assert.Equal(t, []string{"2025-01-17", "2025-02-21", "2025-03-21"}, Expirations(rows))
}
