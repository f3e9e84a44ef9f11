package listing

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC)

// stubFetcher serves canned bodies by exact identifier and records calls.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *stubFetcher) Get(_ context.Context, identifier string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, identifier)
	if err := f.errs[identifier]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[identifier]), nil
}

func (f *stubFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newMockClock(now time.Time) *clock.Mock {
	clk := clock.NewMock()
	clk.Set(now)
	return clk
}

// newTestProperty decodes js into a Property with default display settings.
func newTestProperty(t *testing.T, js string, fetcher Fetcher, clk clock.Clock) *Property {
	t.Helper()

	var raw RawListing
	require.NoError(t, json.Unmarshal([]byte(js), &raw))

	if clk == nil {
		clk = newMockClock(testNow)
	}
	return &Property{
		raw: raw,
		env: &env{
			display: DefaultDisplay(),
			fetcher: fetcher,
			clock:   clk,
			logger:  zerolog.Nop(),
		},
	}
}

func newTestRepository(fetcher Fetcher) *Repository {
	logger := zerolog.Nop()
	return NewRepository(fetcher, RepositoryConfig{
		Clock:  newMockClock(testNow),
		Logger: &logger,
	})
}
