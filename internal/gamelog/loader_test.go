package gamelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/season"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	logs  map[string][]model.GameLogEntry
	errs  map[string]error

	// enter/release turn the provider into a barrier for coalescing tests.
	enter   chan struct{}
	release chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls: make(map[string]int),
		logs:  make(map[string][]model.GameLogEntry),
		errs:  make(map[string]error),
	}
}

func windowID(playerID int64, year int, gt model.GameType) string {
	return fmt.Sprintf("%d:%d:%s", playerID, year, gt)
}

func (f *fakeProvider) FetchSeasonLog(_ context.Context, playerID int64, year int, gt model.GameType) ([]model.GameLogEntry, error) {
	key := windowID(playerID, year, gt)
	f.mu.Lock()
	f.calls[key]++
	rows, errs := f.logs[key], f.errs[key]
	enter, release := f.enter, f.release
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
		<-release
	}
	return rows, errs
}

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func entry(id string, date time.Time, team, home, away string, minutes, points float64) model.GameLogEntry {
	return model.GameLogEntry{
		GameID: id, GameDate: date, PlayerTeam: team, HomeTeam: home, AwayTeam: away,
		Minutes: minutes, Points: points,
	}
}

// newTestLoader pins "now" to Jan 15, 2026, i.e. season year 2025.
func newTestLoader(p Provider) *Loader {
	l := NewLoader(p, season.Default(), zerolog.Nop())
	l.now = func() time.Time { return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLoadMergesDeduplicatesAndSorts(t *testing.T) {
	p := newFakeProvider()
	jan10 := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	jan12 := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	apr20 := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)

	p.logs[windowID(7, 2025, model.GameTypeRegular)] = []model.GameLogEntry{
		entry("g1", jan10, "MIL", "MIL", "BOS", 30, 25),
		entry("g2", jan12, "MIL", "CHI", "MIL", 32, 30),
		// duplicate of g1, as if the same upstream page was merged twice
		entry("g1", jan10, "MIL", "MIL", "BOS", 30, 25),
	}
	p.logs[windowID(7, 2024, model.GameTypePlayoffs)] = []model.GameLogEntry{
		entry("g3", apr20, "MIL", "MIL", "IND", 38, 33),
		// unparseable: no date and no team
		{GameID: "junk"},
	}

	l := newTestLoader(p)
	log, err := l.Load(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, log, 3)
	assert.Equal(t, []string{"g2", "g1", "g3"}, []string{log[0].GameID, log[1].GameID, log[2].GameID})
	assert.Equal(t, 4, p.totalCalls(), "one fetch per (season, game type) window")
}

func TestLoadServesMergedCacheOnRepeat(t *testing.T) {
	p := newFakeProvider()
	p.logs[windowID(7, 2025, model.GameTypeRegular)] = []model.GameLogEntry{
		entry("g1", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "MIL", "MIL", "BOS", 30, 25),
	}

	l := newTestLoader(p)
	_, err := l.Load(context.Background(), 7)
	require.NoError(t, err)
	first := p.totalCalls()

	_, err = l.Load(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, first, p.totalCalls(), "repeat load must not refetch")
}

func TestLoadSkipsFailedWindows(t *testing.T) {
	p := newFakeProvider()
	p.logs[windowID(7, 2025, model.GameTypeRegular)] = []model.GameLogEntry{
		entry("g1", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "MIL", "MIL", "BOS", 30, 25),
	}
	p.errs[windowID(7, 2025, model.GameTypePlayoffs)] = errors.New("rate limited")
	p.errs[windowID(7, 2024, model.GameTypePlayoffs)] = errors.New("rate limited")

	l := newTestLoader(p)
	log, err := l.Load(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "g1", log[0].GameID)
}

func TestLoadFailsWhenEveryWindowFails(t *testing.T) {
	p := newFakeProvider()
	boom := errors.New("upstream down")
	for _, year := range []int{2025, 2024} {
		for _, gt := range []model.GameType{model.GameTypeRegular, model.GameTypePlayoffs} {
			p.errs[windowID(7, year, gt)] = boom
		}
	}

	l := newTestLoader(p)
	_, err := l.Load(context.Background(), 7)
	require.ErrorIs(t, err, boom)
}

func TestLoadHonorsCancellation(t *testing.T) {
	p := newFakeProvider()
	l := newTestLoader(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, 7)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.totalCalls())
}

func TestWindowCoalescesConcurrentFetches(t *testing.T) {
	p := newFakeProvider()
	key := WindowKey{PlayerID: 7, SeasonYear: 2025, GameType: model.GameTypeRegular}
	p.logs[key.String()] = []model.GameLogEntry{
		entry("g1", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "MIL", "MIL", "BOS", 30, 25),
	}
	p.enter = make(chan struct{}, 1)
	p.release = make(chan struct{})

	l := newTestLoader(p)

	const waiters = 10
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := l.window(context.Background(), key)
			assert.NoError(t, err)
			assert.Len(t, rows, 1)
		}()
	}

	// Wait for the single flight to enter the provider, give the remaining
	// goroutines time to join it, then release.
	<-p.enter
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()

	assert.Equal(t, 1, p.totalCalls(), "N concurrent requests must share one fetch")
}

func TestMergeKeepsFirstOccurrence(t *testing.T) {
	jan10 := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	merged := Merge([]model.GameLogEntry{
		entry("g1", jan10, "MIL", "MIL", "BOS", 30, 25),
		entry("g1", jan10, "MIL", "MIL", "BOS", 30, 99),
	})
	require.Len(t, merged, 1)
	assert.Equal(t, 25.0, merged[0].Points)
}
