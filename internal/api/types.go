package api

// ConferenceEntry is one conference's decision and comment set for a record.
// Empty fields mean "not yet set".
type ConferenceEntry struct {
	ConferenceName       string
	DecisionWithComments string
	PrecheckComments     string
	FirstsetComments     string
}

// FileRecord is one manuscript title with zero or more conference entries.
// Entries keep server order and are not deduplicated by identity.
type FileRecord struct {
	Title       string
	Conferences []ConferenceEntry
}

// Page is the normalized response shape shared by every gateway operation.
type Page struct {
	Records    []FileRecord
	TotalPages int
}

// The service grew two response envelopes over time: file-get answers under
// a "data" key, file-upload under "response". Both carry the same record
// shape, so they are decoded separately and normalized into Page here
// instead of leaking the inconsistency upward.

type conferenceWire struct {
	ConferenceName       string `json:"Conference_Name"`
	DecisionWithComments string `json:"Decision_With_Comments"`
	PrecheckComments     string `json:"Precheck_Comments"`
	FirstsetComments     string `json:"Firstset_Comments"`
}

type fileRecordWire struct {
	Title      string           `json:"Title"`
	Conference []conferenceWire `json:"Conference"`
}

type fileGetWire struct {
	Data      []fileRecordWire `json:"data"`
	TotalPage int              `json:"total_page"`
}

type fileUploadWire struct {
	Response  []fileRecordWire `json:"response"`
	TotalPage int              `json:"total_page"`
}

func toPage(records []fileRecordWire, totalPage int) *Page {
	out := make([]FileRecord, 0, len(records))
	for _, rec := range records {
		entries := make([]ConferenceEntry, 0, len(rec.Conference))
		for _, conf := range rec.Conference {
			entries = append(entries, ConferenceEntry{
				ConferenceName:       conf.ConferenceName,
				DecisionWithComments: conf.DecisionWithComments,
				PrecheckComments:     conf.PrecheckComments,
				FirstsetComments:     conf.FirstsetComments,
			})
		}
		out = append(out, FileRecord{Title: rec.Title, Conferences: entries})
	}
	if totalPage < 1 {
		totalPage = 1
	}
	return &Page{Records: out, TotalPages: totalPage}
}
