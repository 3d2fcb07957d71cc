// Package object loads records from JSON or CSV objects in an object store.
// A table names either one key, or a prefix whose objects are read in key
// order and concatenated.
package object

import (
	"context"
	"fmt"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/filestore"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/decode"
)

const (
	OptionBucket = "bucket"
	OptionKey    = "key"
	OptionPrefix = "prefix"
	OptionFormat = "format"
)

type Source struct {
	source.MapFields
	store         filestore.Store
	defaultBucket string
	log           *logger.Logger
}

// New reads from store. defaultBucket is used when a table has no bucket
// option and may be empty.
func New(store filestore.Store, defaultBucket string, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	return &Source{store: store, defaultBucket: defaultBucket, log: log}
}

func (*Source) Name() string { return "object" }

func (s *Source) Load(ctx context.Context, p source.Params) ([]source.Record, error) {
	bucket := p.Table.RequireOr(OptionBucket, s.defaultBucket)
	if bucket == "" {
		return nil, errs.MissingOption(OptionBucket)
	}

	keys, err := s.keys(ctx, bucket, p)
	if err != nil {
		return nil, err
	}

	records := make([]source.Record, 0)
	for _, key := range keys {
		recs, err := s.read(ctx, bucket, key, p.Table.RequireOr(OptionFormat, ""))
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	s.log.ReportInfo(fmt.Sprintf("read %d records from %d objects in %s", len(records), len(keys), bucket))
	return records, nil
}

// keys resolves the key option, or lists the prefix when no key is set.
func (s *Source) keys(ctx context.Context, bucket string, p source.Params) ([]string, error) {
	if key, ok := p.Table.Get(OptionKey); ok && key != "" {
		return []string{key}, nil
	}
	prefix, ok := p.Table.Get(OptionPrefix)
	if !ok {
		return nil, errs.MissingOption(OptionKey)
	}

	infos, err := s.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to list %s/%s", bucket, prefix), err)
	}
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	return keys, nil
}

func (s *Source) read(ctx context.Context, bucket, key, formatOpt string) ([]source.Record, error) {
	format, err := decode.ParseFormat(formatOpt, key)
	if err != nil {
		return nil, err
	}

	obj, err := s.store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to open %s/%s", bucket, key), err)
	}
	defer obj.Close()

	records, err := decode.Decode(format, obj)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), fmt.Sprintf("object %s/%s", bucket, key), err)
	}
	s.log.Debugf("decoded %d records from %s/%s", len(records), bucket, key)
	return records, nil
}
