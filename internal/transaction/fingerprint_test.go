package transaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkrogh/ledger/internal/transaction"
)

func TestFingerprint_Deterministic(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	a := transaction.Fingerprint(date, "NETTO KBH", -12550, "Budget")
	b := transaction.Fingerprint(date, "NETTO KBH", -12550, "Budget")

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestFingerprint_FieldSensitivity(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	base := transaction.Fingerprint(date, "NETTO KBH", -12550, "Budget")

	type testCase struct {
		name    string
		date    time.Time
		source  string
		amount  int64
		account string
	}

	tests := []testCase{
		{
			name:    "DifferentDate",
			date:    date.AddDate(0, 0, 1),
			source:  "NETTO KBH",
			amount:  -12550,
			account: "Budget",
		},
		{
			name:    "DifferentTimeOfDay",
			date:    date.Add(14*time.Hour + 30*time.Minute),
			source:  "NETTO KBH",
			amount:  -12550,
			account: "Budget",
		},
		{
			name:    "DifferentSource",
			date:    date,
			source:  "NETTO AMAGER",
			amount:  -12550,
			account: "Budget",
		},
		{
			name:    "DifferentAmount",
			date:    date,
			source:  "NETTO KBH",
			amount:  -12551,
			account: "Budget",
		},
		{
			name:    "DifferentAccount",
			date:    date,
			source:  "NETTO KBH",
			amount:  -12550,
			account: "Joint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transaction.Fingerprint(tt.date, tt.source, tt.amount, tt.account)
			assert.NotEqual(t, base, got)
		})
	}
}

// Field values must not bleed into each other: moving a character across
// the source/account boundary has to change the hash.
func TestFingerprint_FieldBoundaries(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	a := transaction.Fingerprint(date, "AB", 100, "C")
	b := transaction.Fingerprint(date, "A", 100, "BC")

	assert.NotEqual(t, a, b)
}
