package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/config"
)

var errBackendDown = errors.New("connection refused")

// fakeAPI records calls and returns canned results. A non-nil gate blocks
// the named call until the test sends on it.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	weekly    api.Counts
	daily     map[string]api.Counts
	news      []api.NewsItem
	search    []api.NewsItem
	report    *api.ReportResult
	reply     string
	err       map[string]error
	gates     map[string]chan struct{}
	lastChat  [3]string
	lastQuery [2]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		daily: make(map[string]api.Counts),
		err:   make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeAPI) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	gate := f.gates[name]
	err := f.err[name]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeAPI) setErr(name string, err error) {
	f.mu.Lock()
	f.err[name] = err
	f.mu.Unlock()
}

func (f *fakeAPI) gate(name string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[name] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeAPI) ungate(name string) {
	f.mu.Lock()
	delete(f.gates, name)
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) WeeklyCounts(ctx context.Context) (api.Counts, error) {
	if err := f.enter(ctx, "weekly"); err != nil {
		return nil, err
	}
	return f.weekly, nil
}

func (f *fakeAPI) DailyCounts(ctx context.Context, date string) (api.Counts, error) {
	if err := f.enter(ctx, "daily"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daily[date], nil
}

func (f *fakeAPI) NewsByCategoryAndDate(ctx context.Context, category, date string) ([]api.NewsItem, error) {
	if err := f.enter(ctx, "filter"); err != nil {
		return nil, err
	}
	return f.news, nil
}

func (f *fakeAPI) NewsByDate(ctx context.Context, date string) ([]api.NewsItem, error) {
	if err := f.enter(ctx, "by-date"); err != nil {
		return nil, err
	}
	return f.news, nil
}

func (f *fakeAPI) Search(ctx context.Context, query, date string) ([]api.NewsItem, error) {
	f.mu.Lock()
	f.lastQuery = [2]string{query, date}
	f.mu.Unlock()
	if err := f.enter(ctx, "search"); err != nil {
		return nil, err
	}
	return f.search, nil
}

func (f *fakeAPI) SendReport(ctx context.Context, date, email string) (*api.ReportResult, error) {
	if err := f.enter(ctx, "report"); err != nil {
		return nil, err
	}
	return f.report, nil
}

func (f *fakeAPI) Chat(ctx context.Context, message, date, category string) (string, error) {
	f.mu.Lock()
	f.lastChat = [3]string{message, date, category}
	f.mu.Unlock()
	if err := f.enter(ctx, "chat"); err != nil {
		return "", err
	}
	return f.reply, nil
}

func newTestController(t *testing.T, variant string) (*Controller, *fakeAPI) {
	t.Helper()
	v, err := config.LoadVariant(variant)
	require.NoError(t, err)
	fake := newFakeAPI()
	return New(fake, v), fake
}
