package history

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chazuruo/reelflix/internal/config"
	rferrors "github.com/chazuruo/reelflix/internal/errors"
	"github.com/chazuruo/reelflix/internal/kv"
	"github.com/chazuruo/reelflix/internal/logging"
)

// ManagerOptions configures a Manager. Zero values select the defaults.
type ManagerOptions struct {
	// Key is the storage key the history lives under (default: config.DefaultStorageKey).
	Key string

	// Logger receives warnings about unreadable or unwritable history.
	Logger *zerolog.Logger

	// Now returns the current time (default: time.Now).
	Now func() time.Time

	// NewID returns a fresh entry identifier (default: a UUIDv7 string).
	NewID func() string
}

// Manager owns the search history for one storage key.
//
// The list is loaded from the store on first use and written back in full
// after every change. All methods are safe for concurrent use; each
// load-modify-persist sequence runs under a single lock.
type Manager struct {
	store kv.Store
	key   string
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	loaded  bool
	entries []Entry
}

// NewManager creates a Manager persisting to store.
func NewManager(store kv.Store, opts ManagerOptions) *Manager {
	m := &Manager{
		store: store,
		key:   opts.Key,
		now:   opts.Now,
		newID: opts.NewID,
	}
	if m.key == "" {
		m.key = config.DefaultStorageKey
	}
	if opts.Logger != nil {
		m.log = logging.Module(*opts.Logger, logging.ModuleHistory)
	} else {
		m.log = zerolog.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = newEntryID
	}
	return m
}

// newEntryID returns a time-ordered UUID, falling back to a random one.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Key returns the storage key the manager reads and writes.
func (m *Manager) Key() string {
	return m.key
}

// Load re-reads the history from the store, replacing the in-memory list.
//
// An absent key yields an empty list. A value that cannot be read or
// decoded is logged and also yields an empty list; Load never fails.
func (m *Manager) Load(ctx context.Context) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadLocked(ctx)
	return slices.Clone(m.entries)
}

// Entries returns the current list, loading it first if needed.
func (m *Manager) Entries(ctx context.Context) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	return slices.Clone(m.entries)
}

// Lookup returns the entry with the given id.
func (m *Manager) Lookup(ctx context.Context, id string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	if i := m.indexOf(id); i >= 0 {
		return m.entries[i], true
	}
	return Entry{}, false
}

// Record adds query to the front of the history.
//
// The query is trimmed; a blank query changes nothing and writes nothing.
// An existing entry with the same query (ignoring case) is replaced, and the
// oldest entries beyond MaxEntries are dropped.
//
// If the write fails the returned list still reflects the change and the
// error is a *errors.StorageWriteError.
func (m *Manager) Record(ctx context.Context, query string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	return m.recordLocked(ctx, query)
}

// Select re-records the query of the entry with the given id, moving it to
// the front with a fresh timestamp. It fails with errors.ErrNotFound when no
// entry has that id.
func (m *Manager) Select(ctx context.Context, id string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	i := m.indexOf(id)
	if i < 0 {
		return slices.Clone(m.entries), rferrors.Wrap(rferrors.ErrNotFound, "select "+id)
	}
	return m.recordLocked(ctx, m.entries[i].Query)
}

// Remove deletes the entry with the given id. An unknown id changes nothing
// and writes nothing.
func (m *Manager) Remove(ctx context.Context, id string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	i := m.indexOf(id)
	if i < 0 {
		return slices.Clone(m.entries), nil
	}

	m.entries = slices.Delete(m.entries, i, i+1)
	m.logger(ctx).Debug().Str("id", id).Msg("Removed search history entry")

	return slices.Clone(m.entries), m.persistLocked(ctx)
}

// Clear removes every entry and deletes the stored key. Confirming with the
// user is the caller's job.
func (m *Manager) Clear(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = []Entry{}
	m.loaded = true

	if err := m.store.Delete(ctx, m.key); err != nil {
		werr := &rferrors.StorageWriteError{Op: "delete", Key: m.key, Err: rferrors.IO(err)}
		m.logger(ctx).Warn().Err(werr).Msg("Failed to clear search history")
		return []Entry{}, werr
	}

	m.logger(ctx).Debug().Msg("Cleared search history")
	return []Entry{}, nil
}

func (m *Manager) logger(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(ctx, logging.ModuleHistory, &m.log)
}

func (m *Manager) ensureLoaded(ctx context.Context) {
	if !m.loaded {
		m.loadLocked(ctx)
	}
}

func (m *Manager) loadLocked(ctx context.Context) {
	log := m.logger(ctx)

	m.entries = []Entry{}
	m.loaded = true

	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		rerr := &rferrors.StorageReadError{Key: m.key, Err: rferrors.IO(err)}
		log.Warn().Err(rerr).Msg("Failed to read search history, starting empty")
		return
	}
	if !ok {
		return
	}

	entries, err := Decode(raw)
	if err != nil {
		rerr := &rferrors.StorageReadError{Key: m.key, Err: err}
		log.Warn().Err(rerr).Msg("Stored search history is unreadable, starting empty")
		return
	}

	m.entries = Normalized(entries)
	log.Debug().Int("count", len(m.entries)).Msg("Loaded search history")
}

func (m *Manager) recordLocked(ctx context.Context, query string) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return slices.Clone(m.entries), nil
	}

	timestamp := m.now().UnixMilli()
	// Keep the list sorted even if the clock stepped backwards.
	if len(m.entries) > 0 && m.entries[0].Timestamp > timestamp {
		timestamp = m.entries[0].Timestamp
	}

	updated := make([]Entry, 0, MaxEntries)
	updated = append(updated, Entry{
		ID:        m.newID(),
		Query:     query,
		Timestamp: timestamp,
	})
	for _, e := range m.entries {
		if SameQuery(e.Query, query) {
			continue
		}
		if len(updated) == MaxEntries {
			break
		}
		updated = append(updated, e)
	}
	m.entries = updated

	m.logger(ctx).Debug().Str("query", query).Int("count", len(updated)).Msg("Recorded search")

	return slices.Clone(m.entries), m.persistLocked(ctx)
}

func (m *Manager) persistLocked(ctx context.Context) error {
	data, err := Encode(m.entries)
	if err != nil {
		return &rferrors.StorageWriteError{Op: "set", Key: m.key, Err: err}
	}

	if err := m.store.Set(ctx, m.key, data); err != nil {
		werr := &rferrors.StorageWriteError{Op: "set", Key: m.key, Err: rferrors.IO(err)}
		m.logger(ctx).Warn().Err(werr).Msg("Failed to save search history")
		return werr
	}
	return nil
}

func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.entries, func(e Entry) bool {
		return e.ID == id
	})
}
