// Package chart owns chart handles and draws them, either into the terminal
// or into a PNG file.
package chart

import (
	"sort"
	"sync"
)

// Region names the place a chart is drawn into.
type Region string

const (
	RegionWeekly Region = "weekly"
	RegionDaily  Region = "daily"
)

// Kind selects how a dataset is drawn.
type Kind int

const (
	KindLine Kind = iota
	KindBar
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindBar:
		return "bar"
	default:
		return "unknown"
	}
}

// Dataset is one labelled series.
type Dataset struct {
	Label  string
	Labels []string
	Values []float64
}

// Empty reports whether there is nothing to draw.
func (d Dataset) Empty() bool {
	return len(d.Values) == 0
}

// Max returns the largest value, or 0 for an empty dataset.
func (d Dataset) Max() float64 {
	maxV := 0.0
	for _, v := range d.Values {
		if v > maxV {
			maxV = v
		}
	}
	return maxV
}

func (d Dataset) clone() Dataset {
	return Dataset{
		Label:  d.Label,
		Labels: append([]string(nil), d.Labels...),
		Values: append([]float64(nil), d.Values...),
	}
}

// Handle is a live chart bound to a region. It must be released before a
// replacement for the same region is created.
type Handle struct {
	id     uint64
	region Region
	kind   Kind
	data   Dataset
	reg    *Registry
	once   sync.Once
}

func (h *Handle) ID() uint64       { return h.id }
func (h *Handle) Region() Region   { return h.region }
func (h *Handle) Kind() Kind       { return h.kind }
func (h *Handle) Dataset() Dataset { return h.data.clone() }

// Release detaches the handle from its registry. Calling it again is a no-op.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.reg.remove(h)
	})
}

// Live reports whether the handle has not been released.
func (h *Handle) Live() bool {
	if h == nil {
		return false
	}
	return h.reg.has(h)
}

// Registry counts live handles per region.
type Registry struct {
	mu   sync.Mutex
	next uint64
	live map[Region]map[uint64]*Handle
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[Region]map[uint64]*Handle)}
}

// New creates a live handle. The dataset is copied.
func (r *Registry) New(region Region, kind Kind, data Dataset) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	h := &Handle{id: r.next, region: region, kind: kind, data: data.clone(), reg: r}
	if r.live[region] == nil {
		r.live[region] = make(map[uint64]*Handle)
	}
	r.live[region][h.id] = h
	return h
}

// Live returns the number of unreleased handles bound to region.
func (r *Registry) Live(region Region) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live[region])
}

// Regions lists regions that currently hold at least one handle.
func (r *Registry) Regions() []Region {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Region, 0, len(r.live))
	for region, handles := range r.live {
		if len(handles) > 0 {
			out = append(out, region)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live[h.region], h.id)
}

func (r *Registry) has(h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[h.region][h.id]
	return ok
}
