package tui

// Panel is one of the trigger forms of the dashboard.
type Panel int

const (
	PanelFilter Panel = iota
	PanelDay
	PanelSearch
	PanelReport
	PanelChat
)

func (p Panel) String() string {
	switch p {
	case PanelFilter:
		return "filter"
	case PanelDay:
		return "day"
	case PanelSearch:
		return "search"
	case PanelReport:
		return "report"
	case PanelChat:
		return "chat"
	default:
		return "unknown"
	}
}

// field indexes App.inputs. Tab order follows declaration order.
type field int

const (
	fieldCategory field = iota
	fieldFilterDate
	fieldDayDate
	fieldSearchQuery
	fieldSearchDate
	fieldReportDate
	fieldReportEmail
	fieldChatMessage
	fieldChatDate
	fieldChatCategory
	fieldCount
)

type fieldSpec struct {
	panel       Panel
	label       string
	placeholder string
	charLimit   int
}

var fieldSpecs = [fieldCount]fieldSpec{
	fieldCategory:     {PanelFilter, "category", "tech", 64},
	fieldFilterDate:   {PanelFilter, "date", "YYYY-MM-DD", 10},
	fieldDayDate:      {PanelDay, "date", "YYYY-MM-DD", 10},
	fieldSearchQuery:  {PanelSearch, "query", "keywords", 256},
	fieldSearchDate:   {PanelSearch, "date", "optional", 10},
	fieldReportDate:   {PanelReport, "date", "YYYY-MM-DD", 10},
	fieldReportEmail:  {PanelReport, "email", "you@example.org", 254},
	fieldChatMessage:  {PanelChat, "message", "ask about the news", 1024},
	fieldChatDate:     {PanelChat, "date", "YYYY-MM-DD", 10},
	fieldChatCategory: {PanelChat, "category", "optional", 64},
}

func (f field) panel() Panel { return fieldSpecs[f].panel }

// panelFields returns the fields of p in tab order.
func panelFields(p Panel) []field {
	var out []field
	for f := field(0); f < fieldCount; f++ {
		if f.panel() == p {
			out = append(out, f)
		}
	}
	return out
}
