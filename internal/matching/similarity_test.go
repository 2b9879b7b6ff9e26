package matching_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrogh/ledger/internal/matching"
	"github.com/mkrogh/ledger/internal/transaction"
)

func poolTx(source string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:     uuid.New(),
		Date:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Source: source,
	}
}

func TestMatcher_Score(t *testing.T) {
	m := matching.NewMatcher(0, 0, nil)

	type testCase struct {
		name string
		a    string
		b    string
		want func(t *testing.T, score int)
	}

	tests := []testCase{
		{
			name: "ExactMatch",
			a:    "netto kbh",
			b:    "netto kbh",
			want: func(t *testing.T, score int) { assert.Equal(t, 100, score) },
		},
		{
			name: "ReorderedTokens",
			a:    "kbh netto",
			b:    "netto kbh",
			want: func(t *testing.T, score int) { assert.Equal(t, 100, score) },
		},
		{
			name: "SharedToken",
			a:    "netto kbh",
			b:    "netto amager",
			want: func(t *testing.T, score int) { assert.Equal(t, 50, score) },
		},
		{
			name: "TypoDrift",
			a:    "spotify",
			b:    "spotifu",
			want: func(t *testing.T, score int) { assert.GreaterOrEqual(t, score, 80) },
		},
		{
			name: "Unrelated",
			a:    "netto",
			b:    "xyzq",
			want: func(t *testing.T, score int) { assert.Less(t, score, 20) },
		},
		{
			name: "EmptySide",
			a:    "",
			b:    "netto",
			want: func(t *testing.T, score int) { assert.Zero(t, score) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, m.Score(tt.a, tt.b))
		})
	}
}

func TestMatcher_FindSimilar(t *testing.T) {
	m := matching.NewMatcher(0, 0, nil)

	ref := poolTx("NETTO KBH")
	twin := poolTx("NETTO KBH")
	sibling := poolTx("Netto Amager")
	unrelated := poolTx("XYZQW")

	matches := m.FindSimilar(ref, []*transaction.Transaction{ref, twin, sibling, unrelated}, "")

	require.Len(t, matches, 2)

	assert.Equal(t, twin.ID, matches[0].Transaction.ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.True(t, matches[0].Confident)

	assert.Equal(t, sibling.ID, matches[1].Transaction.ID)
	assert.Equal(t, 50, matches[1].Score)
	assert.False(t, matches[1].Confident)
}

func TestMatcher_FindSimilar_NameHint(t *testing.T) {
	m := matching.NewMatcher(0, 0, nil)

	ref := poolTx("Dankort-nota NETTO KBH *1234")
	candidate := poolTx("Spotify AB")

	matches := m.FindSimilar(ref, []*transaction.Transaction{candidate}, "Spotify")

	require.Len(t, matches, 1)
	assert.True(t, matches[0].Confident)
}

func TestMatcher_FindSimilar_EmptyPool(t *testing.T) {
	m := matching.NewMatcher(0, 0, nil)

	assert.Empty(t, m.FindSimilar(poolTx("NETTO KBH"), nil, ""))
}

func TestMatcher_FindSimilar_BlankReference(t *testing.T) {
	m := matching.NewMatcher(0, 0, nil)

	ref := poolTx("   ")
	matches := m.FindSimilar(ref, []*transaction.Transaction{poolTx("NETTO KBH")}, "")

	assert.Empty(t, matches)
}

func TestMatcher_CustomThreshold(t *testing.T) {
	// With the bar at 40, a single shared token out of two is confident.
	m := matching.NewMatcher(40, 10, nil)

	ref := poolTx("netto kbh")
	matches := m.FindSimilar(ref, []*transaction.Transaction{poolTx("netto amager")}, "")

	require.Len(t, matches, 1)
	assert.True(t, matches[0].Confident)
}
