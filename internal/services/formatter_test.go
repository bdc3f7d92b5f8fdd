package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

func TestBuildExportRows_GroupsAndDeduplicates(t *testing.T) {
	// "Ethics in AI" appears on two pages with an overlapping decision.
	records := []api.FileRecord{
		{Title: "Ethics in AI", Conferences: []api.ConferenceEntry{
			{ConferenceName: "ICML", DecisionWithComments: "Accepted", PrecheckComments: "ok"},
			{ConferenceName: "NEURIPS", DecisionWithComments: "Accepted"},
		}},
		{Title: "Ethics in AI", Conferences: []api.ConferenceEntry{
			{ConferenceName: "ICML", DecisionWithComments: "Accepted", FirstsetComments: "minor"},
			{ConferenceName: "AAAI", DecisionWithComments: "Rejected"},
		}},
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Ethics in AI", row.Title)
	assert.Equal(t, "ICML, NEURIPS, AAAI", row.ConferenceName)
	assert.Equal(t, "Accepted, Rejected", row.DecisionWithComments)
	assert.Equal(t, "ok", row.PrecheckComments)
	assert.Equal(t, "minor", row.FirstsetComments)
}

func TestBuildExportRows_TitlesGroupByExactString(t *testing.T) {
	records := []api.FileRecord{
		record("Ethics in AI", "ICML", "Accepted"),
		record("ethics in ai", "NEURIPS", "Rejected"),
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ethics in AI", rows[0].Title)
	assert.Equal(t, "ethics in ai", rows[1].Title)
}

func TestBuildExportRows_ExclusionRemovesEntriesAndEmptiedRecords(t *testing.T) {
	records := []api.FileRecord{
		{Title: "Kept", Conferences: []api.ConferenceEntry{
			{ConferenceName: "icml", DecisionWithComments: "Accepted"},
			{ConferenceName: "NEURIPS", DecisionWithComments: "Rejected"},
		}},
		record("Dropped", " ICML ", "Accepted"),
	}
	excluded := map[string]struct{}{"ICML": {}}

	rows := BuildExportRows(records, excluded)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kept", rows[0].Title)
	assert.Equal(t, "NEURIPS", rows[0].ConferenceName)
	assert.Equal(t, "Rejected", rows[0].DecisionWithComments)
}

func TestBuildExportRows_NoConferenceSentinel(t *testing.T) {
	records := []api.FileRecord{
		{Title: "Orphan"},
		record("Normal", "ICML", "Accepted"),
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, NoConferenceData, rows[0].ConferenceName)
	assert.Empty(t, rows[0].DecisionWithComments)
	assert.Equal(t, "ICML", rows[1].ConferenceName)
}

func TestBuildExportRows_SentinelYieldsToRealEntries(t *testing.T) {
	// One page has the record without conference data, another with it.
	records := []api.FileRecord{
		{Title: "Paper"},
		record("Paper", "ICML", "Accepted"),
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "ICML", rows[0].ConferenceName)
}

func TestBuildExportRows_SkipsBlankFields(t *testing.T) {
	records := []api.FileRecord{
		{Title: "Paper", Conferences: []api.ConferenceEntry{
			{ConferenceName: "ICML", DecisionWithComments: "  "},
			{ConferenceName: "AAAI", DecisionWithComments: "Accepted"},
		}},
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "Accepted", rows[0].DecisionWithComments)
}

func TestBuildExportRows_PreservesFirstSeenOrder(t *testing.T) {
	records := []api.FileRecord{
		record("Charlie", "C1", "d"),
		record("Alpha", "C2", "d"),
		record("Charlie", "C3", "d"),
		record("Bravo", "C4", "d"),
	}

	rows := BuildExportRows(records, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "Charlie", rows[0].Title)
	assert.Equal(t, "Alpha", rows[1].Title)
	assert.Equal(t, "Bravo", rows[2].Title)
	assert.Equal(t, "C1, C3", rows[0].ConferenceName)
}

func TestBuildExportRows_IdempotentOnOwnOutput(t *testing.T) {
	records := []api.FileRecord{
		{Title: "Ethics in AI", Conferences: []api.ConferenceEntry{
			{ConferenceName: "ICML", DecisionWithComments: "Accepted"},
			{ConferenceName: "NEURIPS", DecisionWithComments: "Accepted"},
		}},
		record("Ethics in AI", "ICML", "Accepted"),
		record("Solo", "AAAI", "Rejected"),
	}

	first := BuildExportRows(records, nil)

	// Feed the grouped rows back in as single-conference records.
	var roundTrip []api.FileRecord
	for _, row := range first {
		roundTrip = append(roundTrip, api.FileRecord{
			Title: row.Title,
			Conferences: []api.ConferenceEntry{{
				ConferenceName:       row.ConferenceName,
				DecisionWithComments: row.DecisionWithComments,
				PrecheckComments:     row.PrecheckComments,
				FirstsetComments:     row.FirstsetComments,
			}},
		})
	}

	second := BuildExportRows(roundTrip, nil)
	assert.Equal(t, first, second)
}

func TestBuildExportRows_EmptyInput(t *testing.T) {
	assert.Empty(t, BuildExportRows(nil, nil))
	assert.Empty(t, BuildExportRows(nil, map[string]struct{}{"ICML": {}}))
}

// Keeps the formatter honest against the writer contract: every produced
// value fits an ExportRow column with no extra fields.
func TestBuildExportRows_RowShape(t *testing.T) {
	rows := BuildExportRows([]api.FileRecord{record("T", "C", "D")}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, sheet.ExportRow{
		Title:                "T",
		ConferenceName:       "C",
		DecisionWithComments: "D",
	}, rows[0])
}
