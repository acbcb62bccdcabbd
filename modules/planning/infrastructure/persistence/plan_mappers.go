package persistence

import (
	"github.com/iota-uz/utilization/modules/planning/domain/entry"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
)

// EntriesCollection is the subcollection holding a plan's entries.
const EntriesCollection = "entries"

// entryDoc adds the match status as a top-level field so entries can be filtered by it.
type entryDoc struct {
	*entry.Entry
	MatchStatus match.Status `json:"matchStatus"`
}

func toEntryDoc(e *entry.Entry) entryDoc {
	return entryDoc{Entry: e, MatchStatus: e.Match.Status()}
}
