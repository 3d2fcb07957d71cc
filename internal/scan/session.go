package scan

import "github.com/koustreak/fdw/internal/source"

// session is the state of one scan: a fixed snapshot of records and the
// cursor into it. It lives from BeginScan to EndScan.
type session struct {
	records []source.Record
	cursor  int
}

func newSession(records []source.Record) *session {
	return &session{records: records}
}

func (s *session) current() (source.Record, bool) {
	if s.cursor >= len(s.records) {
		return nil, false
	}
	return s.records[s.cursor], true
}

func (s *session) advance() { s.cursor++ }

func (s *session) rewind() { s.cursor = 0 }
