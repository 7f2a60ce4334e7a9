// Package history keeps an append-only log of joint configurations with a
// movable cursor, giving calling collaborators undo/redo over the
// configurations they have sent to the engine. The engine itself holds no
// notion of a current configuration; that state lives here, on the caller's
// side of the contract.
package history

import "sync"

// Log records configurations in arrival order. Entries are never removed;
// undo and redo only move the cursor. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries [][]float64
	cursor  int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{cursor: -1}
}

// Append records a configuration and moves the cursor to it.
func (l *Log) Append(config []float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, append([]float64(nil), config...))
	l.cursor = len(l.entries) - 1
}

// Current returns the configuration at the cursor, or false when the log is
// empty.
func (l *Log) Current() ([]float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor < 0 {
		return nil, false
	}
	return append([]float64(nil), l.entries[l.cursor]...), true
}

// Undo moves the cursor one entry back and returns the configuration there,
// or false when there is nothing earlier.
func (l *Log) Undo() ([]float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor <= 0 {
		return nil, false
	}
	l.cursor--
	return append([]float64(nil), l.entries[l.cursor]...), true
}

// Redo moves the cursor one entry forward and returns the configuration
// there, or false when the cursor is already at the latest entry.
func (l *Log) Redo() ([]float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor >= len(l.entries)-1 {
		return nil, false
	}
	l.cursor++
	return append([]float64(nil), l.entries[l.cursor]...), true
}

// Len returns the number of recorded configurations.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
