// Package file loads records from a local JSON or CSV file.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/decode"
)

const (
	OptionPath   = "path"
	OptionFormat = "format"
)

type Source struct {
	source.MapFields
	log *logger.Logger
}

func New(log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	return &Source{log: log}
}

func (*Source) Name() string { return "file" }

// Load reads the whole file named by the path table option. The format
// option overrides detection by extension.
func (s *Source) Load(_ context.Context, p source.Params) ([]source.Record, error) {
	path, err := p.Table.Require(OptionPath)
	if err != nil {
		return nil, err
	}
	format, err := decode.ParseFormat(p.Table.RequireOr(OptionFormat, ""), path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	records, err := decode.Decode(format, f)
	if err != nil {
		return nil, err
	}

	s.log.ReportInfo(fmt.Sprintf("read %d records from %s", len(records), path))
	return records, nil
}
