package services

import (
	"strings"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

// NoConferenceData marks export rows for records that carry no conference
// entries at all.
const NoConferenceData = "No Conference Data"

// orderedSet accumulates values in insertion order, deduplicated by exact
// value, skipping blanks.
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func (s *orderedSet) add(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[value]; ok {
		return
	}
	s.seen[value] = struct{}{}
	s.values = append(s.values, value)
}

func (s *orderedSet) join() string {
	return strings.Join(s.values, ", ")
}

type exportGroup struct {
	title     string
	confNames orderedSet
	decisions orderedSet
	prechecks orderedSet
	firstsets orderedSet
	noConfs   bool
}

// BuildExportRows reduces the full aggregate of the active source into
// deduplicated export rows.
//
// Exclusion runs first: entries whose normalized conference name came from
// the operator's own uploaded sheet are removed, and a record left with no
// entries is dropped entirely. Surviving entries are grouped by the exact
// Title string (the server keys records the same way; two different-cased
// titles are distinct groups). Records that had no conference data to begin
// with emit a sentinel row. Groups keep first-seen order.
func BuildExportRows(records []api.FileRecord, excluded map[string]struct{}) []sheet.ExportRow {
	groups := make(map[string]*exportGroup)
	var order []string

	group := func(title string) *exportGroup {
		g, ok := groups[title]
		if !ok {
			g = &exportGroup{title: title}
			groups[title] = g
			order = append(order, title)
		}
		return g
	}

	for _, record := range records {
		if len(record.Conferences) == 0 {
			group(record.Title).noConfs = true
			continue
		}

		var kept []api.ConferenceEntry
		for _, entry := range record.Conferences {
			if _, hidden := excluded[sheet.NormalizeConferenceName(entry.ConferenceName)]; hidden {
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			// Everything this record had was in the operator's own sheet.
			continue
		}

		g := group(record.Title)
		for _, entry := range kept {
			g.confNames.add(entry.ConferenceName)
			g.decisions.add(entry.DecisionWithComments)
			g.prechecks.add(entry.PrecheckComments)
			g.firstsets.add(entry.FirstsetComments)
		}
	}

	rows := make([]sheet.ExportRow, 0, len(order))
	for _, title := range order {
		g := groups[title]
		row := sheet.ExportRow{
			Title:                g.title,
			ConferenceName:       g.confNames.join(),
			DecisionWithComments: g.decisions.join(),
			PrecheckComments:     g.prechecks.join(),
			FirstsetComments:     g.firstsets.join(),
		}
		if row.ConferenceName == "" && g.noConfs {
			row.ConferenceName = NoConferenceData
		}
		rows = append(rows, row)
	}
	return rows
}
