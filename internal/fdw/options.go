package fdw

import "github.com/koustreak/fdw/internal/errs"

// Scope partitions options by where the host declared them.
type Scope int

const (
	ScopeServer Scope = iota
	ScopeTable
)

func (s Scope) String() string {
	if s == ScopeServer {
		return "server"
	}
	return "table"
}

// Options is a read-only key/value lookup. The zero value is empty and usable.
type Options struct {
	values map[string]string
}

// NewOptions copies kv so later mutation by the caller is not observed.
func NewOptions(kv map[string]string) Options {
	values := make(map[string]string, len(kv))
	for k, v := range kv {
		values[k] = v
	}
	return Options{values: values}
}

func (o Options) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Require returns the value for key or a MissingOption error.
func (o Options) Require(key string) (string, error) {
	v, ok := o.values[key]
	if !ok {
		return "", errs.MissingOption(key)
	}
	return v, nil
}

func (o Options) RequireOr(key, def string) string {
	if v, ok := o.values[key]; ok {
		return v
	}
	return def
}

func (o Options) Len() int { return len(o.values) }

// Map returns a copy of the underlying values.
func (o Options) Map() map[string]string {
	out := make(map[string]string, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}
