package models

// Message types carried on the index queue.
const (
	MsgPopulateIndex             = "POPULATE_INDEX"
	MsgPopulatePrisonerPage      = "POPULATE_PRISONER_PAGE"
	MsgPopulatePrisoner          = "POPULATE_PRISONER"
	MsgRefreshIndex              = "REFRESH_INDEX"
	MsgRefreshPrisonerPage       = "REFRESH_PRISONER_PAGE"
	MsgRefreshActiveIndex        = "REFRESH_ACTIVE_INDEX"
	MsgRefreshActivePrisonerPage = "REFRESH_ACTIVE_PRISONER_PAGE"
	MsgRefreshPrisoner           = "REFRESH_PRISONER"
)

// RecordPage is one offset page of the source-of-record id listing. The final
// page keeps the declared size; the source simply returns fewer ids.
type RecordPage struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Offset is the zero-based index of the page's first record.
func (p RecordPage) Offset() int {
	return p.Page * p.PageSize
}

// IDRangePage is an inclusive range of source ids, used when the source
// enumerates active records by id rather than by offset.
type IDRangePage struct {
	FromID int64 `json:"fromId"`
	ToID   int64 `json:"toId"`
}

// Pages splits total records into ceil(total/pageSize) pages.
func Pages(total, pageSize int) []RecordPage {
	if total <= 0 || pageSize <= 0 {
		return nil
	}
	count := (total + pageSize - 1) / pageSize
	pages := make([]RecordPage, count)
	for i := range pages {
		pages[i] = RecordPage{Page: i, PageSize: pageSize}
	}
	return pages
}

type PopulateIndexRequest struct {
	Slot Slot `json:"slot"`
}

type PopulatePageRequest struct {
	Slot Slot       `json:"slot"`
	Page RecordPage `json:"page"`
}

type PopulatePrisonerRequest struct {
	Slot           Slot   `json:"slot"`
	PrisonerNumber string `json:"prisonerNumber"`
}

type RefreshPageRequest struct {
	Page RecordPage `json:"page"`
}

type RefreshActivePageRequest struct {
	Range IDRangePage `json:"range"`
}

type RefreshPrisonerRequest struct {
	PrisonerNumber string `json:"prisonerNumber"`
}
