package dashboard

import (
	"context"
	"regexp"
	"strings"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/debuglog"
)

// SearchState is the search panel toggle.
type SearchState int

const (
	SearchCollapsed SearchState = iota
	SearchExpanded
)

func (s SearchState) String() string {
	if s == SearchExpanded {
		return "expanded"
	}
	return "collapsed"
}

// SearchRegion is the search result panel.
type SearchRegion struct {
	State SearchState
	Query string
	Items []api.NewsItem
	Error string
}

// ToggleSearch collapses an expanded panel without a request, or runs a
// search from the collapsed state. Only a non-empty result expands the panel.
func (c *Controller) ToggleSearch(ctx context.Context, query, date string) (SearchState, error) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if c.search.State == SearchExpanded {
		c.begin(regionSearch)
		c.search = SearchRegion{State: SearchCollapsed}
		c.mu.Unlock()
		c.notify()
		return SearchCollapsed, nil
	}
	if query == "" {
		c.begin(regionSearch)
		c.search.Error = c.variant.Labels.SearchEmpty
		c.mu.Unlock()
		c.notify()
		return SearchCollapsed, &ValidationError{Field: "query", Message: c.variant.Labels.SearchEmpty}
	}
	gen := c.begin(regionSearch)
	c.mu.Unlock()

	items, err := c.api.Search(ctx, query, strings.TrimSpace(date))

	c.mu.Lock()
	if !c.current(regionSearch, gen) {
		state := c.search.State
		c.mu.Unlock()
		return state, ErrSuperseded
	}

	var result error
	switch {
	case err != nil:
		c.search = SearchRegion{State: SearchCollapsed, Error: c.variant.Labels.SearchFailed}
		result = &TransportError{Op: "search", Message: c.variant.Labels.SearchFailed, Err: err}
	case len(items) == 0:
		c.search = SearchRegion{State: SearchCollapsed, Error: c.variant.Labels.SearchNotFound}
		result = &EmptyResultError{Op: "search", Message: c.variant.Labels.SearchNotFound}
	default:
		c.search = SearchRegion{
			State: SearchExpanded,
			Query: query,
			Items: append([]api.NewsItem(nil), items...),
		}
	}
	state := c.search.State
	c.mu.Unlock()

	if err != nil {
		debuglog.WithFields(map[string]any{"op": "search", "query": query}).Warnf("search failed: %v", err)
	}
	c.notify()
	return state, result
}

// Segment is a run of text that either matches the query or does not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into segments, marking every case-insensitive
// occurrence of query. The query is matched literally. Joining the segment
// texts gives back text unchanged.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Text: text[last:m[0]]})
		}
		segments = append(segments, Segment{Text: text[m[0]:m[1]], Match: true})
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
