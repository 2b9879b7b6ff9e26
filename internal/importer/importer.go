package importer

import (
	"io"

	"github.com/mkrogh/ledger/internal/transaction"
)

// Format identifies a supported feed file format.
type Format string

const (
	FormatFeed Format = "feed"
)

type Parser interface {
	Parse(r io.Reader, fallbackAccount string) ([]transaction.ImportRow, error)
}
