package importer

import (
	"fmt"
	"io"

	"github.com/mkrogh/ledger/internal/importer/feed"
	"github.com/mkrogh/ledger/internal/transaction"
)

type Service struct {
	feedParser Parser
}

func NewService() *Service {
	return &Service{
		feedParser: feed.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader, fallbackAccount string) ([]transaction.ImportRow, error) {
	var parser Parser

	switch format {
	case FormatFeed:
		parser = s.feedParser
	default:
		return nil, fmt.Errorf("unknown feed format: %s", format)
	}

	return parser.Parse(r, fallbackAccount)
}
