// Package state holds the game's application state as one immutable document
// addressed by dot paths, with subscriptions, schema validation and undo/redo
package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/parameter"
)

// Change describes one notification
// Path is the path that was written; Old/New are the values at the subscriber's own path
type Change struct {
	Path   string
	Sub    string
	Old    any
	New    any
	Source string // "set", "delete", "batch", "undo", "redo", "reset"
}

// Float returns New as float64 for any numeric kind
func (c Change) Float() (float64, bool) {
	return toFloat(c.New)
}

// Listener receives changes for a subscribed path
type Listener func(Change)

// Option configures a Store
type Option func(*Store)

// WithSchema installs validation rules; the initial document is validated against them
func WithSchema(s Schema) Option {
	return func(st *Store) { st.schema = compileSchema(s) }
}

// WithHistoryLimit bounds the undo stack; n <= 0 disables undo
func WithHistoryLimit(n int) Option {
	return func(st *Store) { st.limit = n }
}

// WithLogger routes listener panics to logger
func WithLogger(logger zerolog.Logger) Option {
	return func(st *Store) { st.logger = logger }
}

type subscription struct {
	id     uint64
	path   string
	segs   []string
	deep   bool
	fn     Listener
	active atomic.Bool
}

type notification struct {
	sub    *subscription
	change Change
}

// Store is the immutable, path-addressed document
//
// Thread-Safety:
//   - All methods are safe for concurrent use
//   - Every write installs a new root; readers may hold old roots indefinitely
//   - Listeners run outside the lock; writes made by a listener queue their own
//     notifications behind the current batch instead of recursing
type Store struct {
	mu      sync.Mutex
	root    map[string]any
	version uint64
	schema  compiledSchema
	limit   int
	undo    []map[string]any
	redo    []map[string]any

	subs    []*subscription
	nextSub uint64

	pending  []notification
	draining bool

	logger zerolog.Logger
}

// New creates a store holding a deep copy of initial
func New(initial map[string]any, opts ...Option) (*Store, error) {
	s := &Store{
		limit:  parameter.StateHistoryLimit,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	root, _ := deepCopy(initial).(map[string]any)
	if root == nil {
		root = map[string]any{}
	}
	if err := s.schema.validate(nil, root); err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// Get returns the value at path; "" returns the root
func (s *Store) Get(path string) (any, bool) {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	return getIn(root, splitPath(path))
}

// GetInt returns the numeric value at path truncated to int, or def
func (s *Store) GetInt(path string, def int) int {
	v, ok := s.Get(path)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return def
}

// GetFloat returns the numeric value at path, or def
func (s *Store) GetFloat(path string, def float64) float64 {
	v, ok := s.Get(path)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// GetString returns the string at path, or def
func (s *Store) GetString(path string, def string) string {
	v, ok := s.Get(path)
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return def
}

// GetBool returns the bool at path, or def
func (s *Store) GetBool(path string, def bool) bool {
	v, ok := s.Get(path)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// Set writes value at path, creating missing intermediate maps
// Equal values are a no-op: no version bump, no history entry, no notification
func (s *Store) Set(path string, value any) error {
	return s.write("set", func(tx *Tx) error { return tx.Set(path, value) })
}

// Update applies fn to the current value at path (nil when absent) and writes the result
func (s *Store) Update(path string, fn func(old any) any) error {
	return s.write("set", func(tx *Tx) error {
		old, _ := tx.Get(path)
		return tx.Set(path, fn(old))
	})
}

// Delete removes path; refused when a required rule covers it
func (s *Store) Delete(path string) error {
	return s.write("delete", func(tx *Tx) error { return tx.Delete(path) })
}

// Merge shallow-merges fields into the map at path as one version
func (s *Store) Merge(path string, fields map[string]any) error {
	return s.write("set", func(tx *Tx) error {
		for k, v := range fields {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if err := tx.Set(child, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Batch runs fn against a transaction committed as one version and one undo entry
// Any error discards every write made in fn
func (s *Store) Batch(fn func(tx *Tx) error) error {
	return s.write("batch", fn)
}

func (s *Store) write(source string, fn func(tx *Tx) error) error {
	s.mu.Lock()
	tx := &Tx{root: s.root, schema: s.schema}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(tx.paths) == 0 || Equal(tx.root, s.root) {
		s.mu.Unlock()
		return nil
	}

	old := s.root
	s.pushUndo(old)
	s.redo = nil
	s.install(tx.root.(map[string]any))
	notes := s.collect(old, s.root, tx.paths, source)
	s.pending = append(s.pending, notes...)
	s.mu.Unlock()

	s.drain()
	return nil
}

// Undo restores the previous version; false when there is nothing to undo
func (s *Store) Undo() bool {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}
	old := s.root
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, old)
	s.install(prev)
	s.pending = append(s.pending, s.collect(old, prev, [][]string{nil}, "undo")...)
	s.mu.Unlock()

	s.drain()
	return true
}

// Redo re-applies an undone version; false when the redo stack is empty
func (s *Store) Redo() bool {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}
	old := s.root
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.pushUndo(old)
	s.install(next)
	s.pending = append(s.pending, s.collect(old, next, [][]string{nil}, "redo")...)
	s.mu.Unlock()

	s.drain()
	return true
}

// CanUndo reports whether Undo would succeed
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo would succeed
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// ClearHistory drops undo and redo stacks
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo, s.redo = nil, nil
}

// Reset replaces the whole document and clears history
func (s *Store) Reset(doc map[string]any) error {
	root, _ := deepCopy(doc).(map[string]any)
	if root == nil {
		root = map[string]any{}
	}

	s.mu.Lock()
	if err := s.schema.validate(nil, root); err != nil {
		s.mu.Unlock()
		return err
	}
	old := s.root
	s.undo, s.redo = nil, nil
	s.install(root)
	s.pending = append(s.pending, s.collect(old, root, [][]string{nil}, "reset")...)
	s.mu.Unlock()

	s.drain()
	return nil
}

// Snapshot returns the current root; it must be treated as read-only
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Version increments on every committed change
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// MarshalJSON encodes the current root
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Subscribe registers fn for changes at path
// Non-deep subscribers fire when their value changes because path itself or an ancestor
// was written; deep subscribers also fire for writes below path
func (s *Store) Subscribe(path string, fn Listener, deep bool) (unsubscribe func()) {
	if fn == nil {
		panic("state: nil listener for " + path)
	}
	s.mu.Lock()
	s.nextSub++
	sub := &subscription{id: s.nextSub, path: path, segs: splitPath(path), deep: deep, fn: fn}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// install must hold mu
func (s *Store) install(root map[string]any) {
	s.root = root
	s.version++
}

// pushUndo must hold mu
func (s *Store) pushUndo(root map[string]any) {
	if s.limit <= 0 {
		return
	}
	s.undo = append(s.undo, root)
	if len(s.undo) > s.limit {
		s.undo = append(s.undo[:0:0], s.undo[len(s.undo)-s.limit:]...)
	}
}

// collect must hold mu
// A subscriber fires when its value differs and it is either deep or some written
// path is at or above it
func (s *Store) collect(oldRoot, newRoot map[string]any, written [][]string, source string) []notification {
	var notes []notification
	for _, sub := range s.subs {
		oldV, _ := getIn(oldRoot, sub.segs)
		newV, _ := getIn(newRoot, sub.segs)
		if Equal(oldV, newV) {
			continue
		}

		var at []string
		hit := false
		for _, w := range written {
			if isPrefix(w, sub.segs) {
				at, hit = w, true
				break
			}
			if sub.deep && isPrefix(sub.segs, w) {
				at, hit = w, true
			}
		}
		if !hit {
			continue
		}
		notes = append(notes, notification{
			sub: sub,
			change: Change{
				Path:   joinPath(at),
				Sub:    sub.path,
				Old:    oldV,
				New:    newV,
				Source: source,
			},
		})
	}
	return notes
}

// drain delivers pending notifications; only one goroutine drains at a time
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		if n.sub.active.Load() {
			s.deliver(n)
		}

		s.mu.Lock()
	}
	s.pending = nil
	s.draining = false
	s.mu.Unlock()
}

func (s *Store) deliver(n notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("path", n.sub.path).Interface("panic", r).Msg("state listener panic")
		}
	}()
	n.sub.fn(n.change)
}

// Tx is a working copy used by Batch; writes are invisible until commit
type Tx struct {
	root   any
	schema compiledSchema
	paths  [][]string
}

// Get reads from the working copy
func (tx *Tx) Get(path string) (any, bool) {
	return getIn(tx.root, splitPath(path))
}

// Set validates and writes into the working copy
func (tx *Tx) Set(path string, value any) error {
	segs := splitPath(path)
	value = deepCopy(value)

	if cur, ok := getIn(tx.root, segs); ok && Equal(cur, value) {
		return nil
	}
	if len(segs) == 0 {
		if _, ok := value.(map[string]any); !ok {
			return &ValidationError{Path: path, Reason: "root must be a map"}
		}
	}
	if err := tx.schema.validate(segs, value); err != nil {
		return err
	}

	next, err := setIn(tx.root, segs, value)
	if err != nil {
		return fmt.Errorf("state: set %q: %w", path, err)
	}
	tx.root = next
	tx.paths = append(tx.paths, segs)
	return nil
}

// Delete removes path from the working copy; absent paths are a no-op
func (tx *Tx) Delete(path string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return &ValidationError{Path: path, Reason: "cannot delete root"}
	}
	if rule, ok := tx.schema.requiredUnder(segs); ok {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("required by rule %q", rule)}
	}
	next, removed := deleteIn(tx.root, segs)
	if !removed {
		return nil
	}
	tx.root = next
	tx.paths = append(tx.paths, segs)
	return nil
}
