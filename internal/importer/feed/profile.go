package feed

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Beløb" with value "-99,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a bank feed export. Supporting a
// new bank is just adding a Profile to the profiles slice.
type Profile struct {
	Name       string
	DateCol    string
	SourceCol  string
	AccountCol string // optional; the caller's account fallback applies when absent
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this
// profile to match. The account column is never required.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.SourceCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is the ordered list of export formats to try during
// auto-detection. More specific profiles come first to avoid false matches.
var profiles = []Profile{
	{
		Name:       "danske-kort",
		DateCol:    "Dato",
		SourceCol:  "Tekst",
		AmountMode: amountSplit,
		DebitCol:   "Hævet",
		CreditCol:  "Indsat",
	},
	{
		Name:       "danske",
		DateCol:    "Dato",
		SourceCol:  "Tekst",
		AccountCol: "Konto",
		AmountMode: amountSingle,
		AmountCol:  "Beløb",
	},
	{
		Name:       "generic",
		DateCol:    "Date",
		SourceCol:  "Description",
		AccountCol: "Account",
		AmountMode: amountSingle,
		AmountCol:  "Amount",
	},
}
