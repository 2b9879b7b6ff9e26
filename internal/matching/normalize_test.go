package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrogh/ledger/internal/matching"
)

func TestNormalize(t *testing.T) {
	type testCase struct {
		name string
		raw  string
		want string
	}

	tests := []testCase{
		{
			name: "LowercasesAndTrims",
			raw:  "  NETTO KBH  ",
			want: "netto kbh",
		},
		{
			name: "StripsNoisePrefix",
			raw:  "Dankort-nota NETTO KBH",
			want: "netto kbh",
		},
		{
			name: "StripsCardSuffix",
			raw:  "NETTO KBH *1234",
			want: "netto kbh",
		},
		{
			name: "StripsReferenceNumber",
			raw:  "MobilePay 123456789 Lars",
			want: "lars",
		},
		{
			name: "KeepsShortNumbers",
			raw:  "7-Eleven 42",
			want: "7-eleven 42",
		},
		{
			name: "CollapsesWhitespace",
			raw:  "NETTO   KBH\t STR",
			want: "netto kbh str",
		},
		{
			name: "Empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matching.Normalize(tt.raw, matching.DefaultNoiseFilters)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Dankort-nota NETTO KBH *1234",
		"MobilePay 987654321 Husleje",
		"Betalingsservice EL-SELSKAB 55512",
		"plain merchant",
	}

	for _, raw := range inputs {
		once := matching.Normalize(raw, matching.DefaultNoiseFilters)
		twice := matching.Normalize(once, matching.DefaultNoiseFilters)

		assert.Equal(t, once, twice, "input %q", raw)
	}
}

func TestNormalize_CustomFilters(t *testing.T) {
	got := matching.Normalize("ACME Corp payment", []string{"payment"})
	assert.Equal(t, "acme corp", got)
}
