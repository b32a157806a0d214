package models

import "strings"

type View string

const (
	ViewList      View = "list"
	ViewBoard     View = "board"
	ViewFollowUps View = "followups"
)

const (
	DueOverdue = "overdue"
	DueWeek    = "7"
	DueNone    = "none"
)

const (
	SortUpdated  = "updated"
	SortCompany  = "company"
	SortFollowUp = "follow_up"
)

var viewNames = map[string]View{
	"list":      ViewList,
	"board":     ViewBoard,
	"followups": ViewFollowUps,
}

// ListFilter narrows an application listing. Empty fields do not filter.
type ListFilter struct {
	View   View
	Query  string
	Status Status
	Due    string
	Sort   string
}

// NormalizeFilter drops unknown values so they behave as "no filter".
func NormalizeFilter(view, query, status, due, sort string) ListFilter {
	f := ListFilter{
		View:  ViewList,
		Query: strings.TrimSpace(query),
		Sort:  SortUpdated,
	}

	if v, ok := viewNames[strings.ToLower(view)]; ok {
		f.View = v
	}

	if IsValidStatus(status) {
		f.Status = Status(status)
	}

	switch due {
	case DueOverdue, DueWeek, DueNone:
		f.Due = due
	}

	switch sort {
	case SortCompany, SortFollowUp:
		f.Sort = sort
	}

	// follow-ups view is always ordered by due time
	if f.View == ViewFollowUps {
		f.Sort = SortFollowUp
	}

	return f
}

// OpenStatuses are the statuses that count toward the overdue and due
// soon filters. Offers and rejections are left out; accepted stays in.
func OpenStatuses() []Status {
	var out []Status
	for _, s := range Statuses() {
		if s != StatusOffer && s != StatusRejected {
			out = append(out, s)
		}
	}
	return out
}

type SidebarCounts struct {
	Total    int            `json:"total"`
	Overdue  int            `json:"overdue"`
	Due7     int            `json:"due7"`
	None     int            `json:"none"`
	Statuses map[Status]int `json:"statuses"`
}
