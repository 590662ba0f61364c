package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/reelflix/internal/config"
	rferrors "github.com/chazuruo/reelflix/internal/errors"
	"github.com/chazuruo/reelflix/internal/kv"
	"github.com/chazuruo/reelflix/internal/logging"
	"github.com/chazuruo/reelflix/internal/testutil"
)

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// sequentialIDs returns an id generator yielding "id-1", "id-2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestManager(store kv.Store, clock *testutil.Clock) *Manager {
	return NewManager(store, ManagerOptions{
		Now:   clock.Now,
		NewID: sequentialIDs(),
	})
}

func queries(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

// TestRecord_Dedup verifies that recording a query differing only in case
// replaces the earlier entry.
func TestRecord_Dedup(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	m := newTestManager(testutil.NewRecordingStore(), clock)

	_, err := m.Record(ctx, "Drama")
	require.NoError(t, err)
	clock.Advance(time.Second)

	entries, err := m.Record(ctx, "drama")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "drama", entries[0].Query)
	assert.Equal(t, testStart.Add(time.Second).UnixMilli(), entries[0].Timestamp)
	assert.Equal(t, "id-2", entries[0].ID)
}

// TestRecord_Capacity verifies that the oldest entry is evicted past MaxEntries.
func TestRecord_Capacity(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	m := newTestManager(testutil.NewRecordingStore(), clock)

	var entries []Entry
	for i := 1; i <= MaxEntries+1; i++ {
		var err error
		entries, err = m.Record(ctx, fmt.Sprintf("q%d", i))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "q11", entries[0].Query)
	assert.Equal(t, "q2", entries[MaxEntries-1].Query)
	assert.NotContains(t, queries(entries), "q1")
}

// TestRecord_OrderSurvivesReload verifies that a fresh manager over the same
// store sees the most recent search first.
func TestRecord_OrderSurvivesReload(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	store := testutil.NewRecordingStore()
	m := newTestManager(store, clock)

	for _, q := range []string{"A", "B", "C"} {
		_, err := m.Record(ctx, q)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	fresh := newTestManager(store, clock)
	assert.Equal(t, []string{"C", "B", "A"}, queries(fresh.Load(ctx)))
}

// TestRecord_Blank verifies that blank queries are ignored without a write.
func TestRecord_Blank(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	m := newTestManager(store, testutil.NewClock(testStart))

	for _, q := range []string{"", "   ", "\t\n"} {
		entries, err := m.Record(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
	assert.Equal(t, 0, store.Writes())
}

// TestRecord_Trims verifies that stored queries are trimmed.
func TestRecord_Trims(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(testutil.NewRecordingStore(), testutil.NewClock(testStart))

	entries, err := m.Record(ctx, "  sci-fi  ")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sci-fi", entries[0].Query)
}

// TestRecord_ClockRegression verifies that a backwards clock step does not
// break the ordering.
func TestRecord_ClockRegression(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	store := testutil.NewRecordingStore()
	m := newTestManager(store, clock)

	_, err := m.Record(ctx, "first")
	require.NoError(t, err)
	clock.Advance(-time.Hour)
	entries, err := m.Record(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, []string{"second", "first"}, queries(entries))
	assert.GreaterOrEqual(t, entries[0].Timestamp, entries[1].Timestamp)

	fresh := newTestManager(store, clock)
	assert.Equal(t, []string{"second", "first"}, queries(fresh.Load(ctx)))
}

// TestLoad_Empty verifies that an absent key loads as an empty list.
func TestLoad_Empty(t *testing.T) {
	m := newTestManager(testutil.NewRecordingStore(), testutil.NewClock(testStart))

	entries := m.Load(context.Background())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// TestLoad_Corrupt verifies that unreadable data degrades to an empty list.
func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	tests := []string{
		`not json`,
		`null`,
		`{"id":"1"}`,
		`[{"id":"1","query":"a"}]`,
	}

	for _, data := range tests {
		t.Run(data, func(t *testing.T) {
			store := testutil.NewRecordingStore()
			require.NoError(t, store.Set(ctx, config.DefaultStorageKey, data))
			m := newTestManager(store, testutil.NewClock(testStart))

			assert.Empty(t, m.Load(ctx))

			// The corrupt value is replaced on the next write.
			entries, err := m.Record(ctx, "western")
			require.NoError(t, err)
			assert.Equal(t, []string{"western"}, queries(entries))
		})
	}
}

// TestLoad_ReadFailure verifies that a failing store degrades to an empty list.
func TestLoad_ReadFailure(t *testing.T) {
	store := testutil.NewRecordingStore()
	store.FailGet = true
	m := newTestManager(store, testutil.NewClock(testStart))

	assert.Empty(t, m.Load(context.Background()))
}

// TestLoad_NormalizesStoredData verifies that stored data written out of order
// or with duplicates is cleaned up on load.
func TestLoad_NormalizesStoredData(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()

	var parts []string
	for i := 0; i < MaxEntries+3; i++ {
		parts = append(parts, fmt.Sprintf(`{"id":"%d","query":"q%d","timestamp":%d}`, i, i, 1000+i))
	}
	parts = append(parts, `{"id":"dup","query":"Q12","timestamp":1}`)
	require.NoError(t, store.Set(ctx, config.DefaultStorageKey, "["+strings.Join(parts, ",")+"]"))

	entries := newTestManager(store, testutil.NewClock(testStart)).Load(ctx)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "q12", entries[0].Query)
	assert.Equal(t, "q3", entries[MaxEntries-1].Query)
	assert.NotContains(t, queries(entries), "Q12")
}

// TestLazyLoad verifies that the first mutation loads stored entries first.
func TestLazyLoad(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	store := testutil.NewRecordingStore()

	seed := newTestManager(store, clock)
	_, err := seed.Record(ctx, "horror")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	m := newTestManager(store, clock)
	entries, err := m.Record(ctx, "comedy")
	require.NoError(t, err)
	assert.Equal(t, []string{"comedy", "horror"}, queries(entries))
}

// TestRemove verifies removal by id.
func TestRemove(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	store := testutil.NewRecordingStore()
	m := newTestManager(store, clock)

	for _, q := range []string{"A", "B", "C"} {
		_, err := m.Record(ctx, q)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	entries, err := m.Remove(ctx, "id-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, queries(entries))

	fresh := newTestManager(store, clock)
	assert.Equal(t, []string{"C", "A"}, queries(fresh.Load(ctx)))
}

// TestRemove_Unknown verifies that removing an unknown id writes nothing.
func TestRemove_Unknown(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	m := newTestManager(store, testutil.NewClock(testStart))

	_, err := m.Record(ctx, "A")
	require.NoError(t, err)
	writes := store.Writes()

	entries, err := m.Remove(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, queries(entries))
	assert.Equal(t, writes, store.Writes())
}

// TestClear verifies that Clear empties the list and the store.
func TestClear(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	store := testutil.NewRecordingStore()
	m := newTestManager(store, clock)

	for _, q := range []string{"A", "B"} {
		_, err := m.Record(ctx, q)
		require.NoError(t, err)
	}

	entries, err := m.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, m.Entries(ctx))

	_, ok, err := store.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, newTestManager(store, clock).Load(ctx))
}

// TestClear_Failure verifies that a failed delete still empties memory.
func TestClear_Failure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	m := newTestManager(store, testutil.NewClock(testStart))

	_, err := m.Record(ctx, "A")
	require.NoError(t, err)

	store.FailDelete = true
	entries, err := m.Clear(ctx)
	require.Error(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, m.Entries(ctx))

	werr, ok := rferrors.AsStorageWriteError(err)
	require.True(t, ok)
	assert.Equal(t, "delete", werr.Op)
	assert.True(t, rferrors.IsIO(err))
}

// TestRecord_WriteFailure verifies that a failed write keeps the in-memory
// change and reports a StorageWriteError.
func TestRecord_WriteFailure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	store.FailSet = true
	m := newTestManager(store, testutil.NewClock(testStart))

	entries, err := m.Record(ctx, "thriller")
	require.Error(t, err)
	assert.Equal(t, []string{"thriller"}, queries(entries))
	assert.Equal(t, []string{"thriller"}, queries(m.Entries(ctx)))

	werr, ok := rferrors.AsStorageWriteError(err)
	require.True(t, ok)
	assert.Equal(t, "set", werr.Op)
	assert.Equal(t, config.DefaultStorageKey, werr.Key)
	assert.ErrorIs(t, err, testutil.ErrInjected)

	// The next successful write persists the whole list.
	store.FailSet = false
	_, err = m.Record(ctx, "mystery")
	require.NoError(t, err)
	fresh := newTestManager(store, testutil.NewClock(testStart))
	assert.Equal(t, []string{"mystery", "thriller"}, queries(fresh.Load(ctx)))
}

// TestSelect verifies that selecting an entry moves it to the front.
func TestSelect(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	m := newTestManager(testutil.NewRecordingStore(), clock)

	for _, q := range []string{"A", "B", "C"} {
		_, err := m.Record(ctx, q)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	entries, err := m.Select(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, queries(entries))
	assert.Equal(t, clock.Now().UnixMilli(), entries[0].Timestamp)

	_, err = m.Select(ctx, "missing")
	assert.True(t, rferrors.IsNotFound(err))
}

// TestLookup verifies lookup by id.
func TestLookup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(testutil.NewRecordingStore(), testutil.NewClock(testStart))

	_, err := m.Record(ctx, "anime")
	require.NoError(t, err)

	e, ok := m.Lookup(ctx, "id-1")
	require.True(t, ok)
	assert.Equal(t, "anime", e.Query)

	_, ok = m.Lookup(ctx, "id-9")
	assert.False(t, ok)
}

// TestCustomKey verifies that managers with different keys do not share data.
func TestCustomKey(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	clock := testutil.NewClock(testStart)

	a := NewManager(store, ManagerOptions{Key: "profile_a", Now: clock.Now})
	b := NewManager(store, ManagerOptions{Key: "profile_b", Now: clock.Now})
	assert.Equal(t, "profile_a", a.Key())

	_, err := a.Record(ctx, "kids")
	require.NoError(t, err)

	assert.Empty(t, b.Load(ctx))
	assert.Len(t, a.Load(ctx), 1)
}

// TestDefaultIDs verifies that default ids are unique.
func TestDefaultIDs(t *testing.T) {
	ctx := context.Background()
	m := NewManager(kv.NewMemory(), ManagerOptions{})

	_, err := m.Record(ctx, "one")
	require.NoError(t, err)
	entries, err := m.Record(ctx, "two")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

// TestConcurrentRecord verifies that concurrent records are not lost.
func TestConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewRecordingStore()
	clock := testutil.NewClock(testStart)
	m := newTestManager(store, clock)

	var wg sync.WaitGroup
	for i := 0; i < MaxEntries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Record(ctx, fmt.Sprintf("q%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries := newTestManager(store, clock).Load(ctx)
	assert.Len(t, entries, MaxEntries)
	assert.ElementsMatch(t,
		[]string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9"},
		queries(entries))
}

// TestRecord_LogsWithHistoryModule verifies that a logger carried by the
// context is tagged with the history module.
func TestRecord_LogsWithHistoryModule(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	store := testutil.NewRecordingStore()
	store.FailSet = true
	m := newTestManager(store, testutil.NewClock(testStart))

	_, err := m.Record(ctx, "musical")
	require.Error(t, err)

	var found bool
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		assert.Equal(t, logging.ModuleHistory, line[logging.KeyModule])
		if line["message"] == "Failed to save search history" {
			found = true
		}
	}
	assert.True(t, found, "expected a save failure line, got:\n%s", buf.String())
}
