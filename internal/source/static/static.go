// Package static serves a fixed, in-memory set of GitHub-style events. It is
// the reference source for exercising the scan lifecycle without I/O.
package static

import (
	"context"
	"encoding/json"

	"github.com/koustreak/fdw/internal/source"
)

// Columns lists the seven fields every event record carries, in table order.
var Columns = []string{"id", "type", "actor", "repo", "payload", "public", "created_at"}

type event struct {
	id        string
	typ       string
	actor     string
	repo      string
	payload   string
	public    bool
	createdAt string
}

var events = []event{
	{"12345", "PushEvent", `{"login":"user1","id":1001}`, `{"name":"repo1","id":2001}`, `{"size":1,"commits":[]}`, true, "2023-01-01T00:00:00Z"},
	{"12346", "PullRequestEvent", `{"login":"user2","id":1002}`, `{"name":"repo2","id":2002}`, `{"action":"opened"}`, true, "2023-01-02T00:00:00Z"},
	{"12347", "IssueCommentEvent", `{"login":"user3","id":1003}`, `{"name":"repo3","id":2003}`, `{"action":"created","issue":{"number":42}}`, true, "2023-01-03T00:00:00Z"},
	{"12348", "WatchEvent", `{"login":"user4","id":1004}`, `{"name":"repo4","id":2004}`, `{"action":"started"}`, true, "2023-01-04T00:00:00Z"},
	{"12349", "ForkEvent", `{"login":"user5","id":1005}`, `{"name":"repo5","id":2005}`, `{"forkee":{"id":3001}}`, true, "2023-01-05T00:00:00Z"},
}

// Source is the static event source.
type Source struct {
	source.MapFields
}

func New() *Source { return &Source{} }

func (*Source) Name() string { return "static" }

// Load returns a fresh copy of the events; options are ignored.
func (*Source) Load(_ context.Context, _ source.Params) ([]source.Record, error) {
	return Records(), nil
}

// Records returns the events as records. JSON fields are raw JSON so their
// key order survives conversion.
func Records() []source.Record {
	out := make([]source.Record, len(events))
	for i, ev := range events {
		out[i] = source.Record{
			"id":         ev.id,
			"type":       ev.typ,
			"actor":      json.RawMessage(ev.actor),
			"repo":       json.RawMessage(ev.repo),
			"payload":    json.RawMessage(ev.payload),
			"public":     ev.public,
			"created_at": ev.createdAt,
		}
	}
	return out
}
