// Package session provides the in-memory session registry with LRU
// eviction and time-based expiry.
package session

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"

	"github.com/ashureev/autostream/internal/domain"
)

const turnLockStripes = 64

// Defaults mirror the production limits of the chat backend.
const (
	DefaultMaxSessions    = 100
	DefaultSessionTimeout = time.Hour
	DefaultMaxTurns       = 6
)

// Stats reports the registry counters exposed via the stats endpoint.
type Stats struct {
	Count         int    `json:"total_sessions"`
	Capacity      int    `json:"max_sessions"`
	OldestSession string `json:"oldest_session,omitempty"`
}

// Registry owns all session records. Access is serialized by a single
// mutex; the recency list keeps get/update/evict O(1).
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	recency  *list.List // front = least recently used, back = most recent
	capacity int
	timeout  time.Duration
	maxTurns int

	// Striped per-session locks so two concurrent turns for the same
	// session id never interleave their read-modify-write.
	turnLocks [turnLockStripes]sync.Mutex
}

// NewRegistry creates a registry with the given capacity, idle timeout and
// per-session turn cap. Non-positive arguments fall back to defaults.
func NewRegistry(capacity int, timeout time.Duration, maxTurns int) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxSessions
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Registry{
		entries:  make(map[string]*list.Element),
		recency:  list.New(),
		capacity: capacity,
		timeout:  timeout,
		maxTurns: maxTurns,
	}
}

// LockSession acquires the turn lock for a session id and returns the
// unlock function. Turns for distinct ids proceed concurrently unless
// they collide on a stripe.
func (r *Registry) LockSession(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	stripe := &r.turnLocks[h.Sum32()%turnLockStripes]
	stripe.Lock()
	return stripe.Unlock
}

// GetOrCreate returns a copy of the record for id, creating a fresh default
// record when the id is unseen or its record has expired.
func (r *Registry) GetOrCreate(id string) *domain.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if elem, ok := r.entries[id]; ok {
		rec := elem.Value.(*domain.SessionRecord)
		if now.Sub(rec.LastAccess) <= r.timeout {
			rec.LastAccess = now
			r.recency.MoveToBack(elem)
			return rec.Clone()
		}
		// Expired records are treated as absent.
		r.removeLocked(id)
	}

	rec := domain.NewSessionRecord(id)
	r.insertLocked(rec)
	return rec.Clone()
}

// Get returns a copy of the record for id without creating one. Expired
// records are deleted and reported as absent.
func (r *Registry) Get(id string) (*domain.SessionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	rec := elem.Value.(*domain.SessionRecord)
	now := time.Now()
	if now.Sub(rec.LastAccess) > r.timeout {
		r.removeLocked(id)
		return nil, false
	}
	rec.LastAccess = now
	r.recency.MoveToBack(elem)
	return rec.Clone(), true
}

// Update merges a mutated copy back into the stored record, refreshes the
// access time, marks the record most recently used and truncates the
// message history to the last 2*maxTurns entries. A missing id degenerates
// to inserting the record as a new session.
func (r *Registry) Update(id string, upd *domain.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.entries[id]
	if !ok {
		rec := upd.Clone()
		rec.LastAccess = time.Now()
		r.truncateMessages(rec)
		r.insertLocked(rec)
		return
	}

	rec := elem.Value.(*domain.SessionRecord)
	mergeRecord(rec, upd)
	rec.LastAccess = time.Now()
	r.truncateMessages(rec)
	r.recency.MoveToBack(elem)
}

// mergeRecord applies updates onto the stored record. Mutable fields take
// the later write; slot fields are first-write-wins and the one-shot flags
// never reset.
func mergeRecord(rec, upd *domain.SessionRecord) {
	rec.Messages = make([]domain.Message, len(upd.Messages))
	copy(rec.Messages, upd.Messages)
	rec.Intent = upd.Intent
	rec.TurnCount = upd.TurnCount
	rec.RetrievedContext = upd.RetrievedContext

	// Phase never regresses.
	if rec.Phase.Before(upd.Phase) {
		rec.Phase = upd.Phase
	}

	if rec.Name == "" {
		rec.Name = upd.Name
	}
	if rec.Email == "" {
		rec.Email = upd.Email
	}
	if rec.Platform == "" {
		rec.Platform = upd.Platform
	}
	if rec.SelectedPlan == "" {
		rec.SelectedPlan = upd.SelectedPlan
	}
	if rec.ChannelLink == "" {
		rec.ChannelLink = upd.ChannelLink
	}

	if upd.LeadCaptured {
		rec.LeadCaptured = true
	}
	if upd.ChannelAnalysisDone {
		rec.ChannelAnalysisDone = true
	}
	if upd.ChannelPermissionAsked {
		rec.ChannelPermissionAsked = true
	}
	if rec.ChannelAnalysis == nil && upd.ChannelAnalysis != nil {
		analysis := *upd.ChannelAnalysis
		rec.ChannelAnalysis = &analysis
	}
}

// Delete removes the record for id. Missing ids are a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

// GetStats returns the current registry counters.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		Count:    len(r.entries),
		Capacity: r.capacity,
	}
	if front := r.recency.Front(); front != nil {
		stats.OldestSession = front.Value.(*domain.SessionRecord).SessionID
	}
	return stats
}

// RemoveExpired deletes every record idle past the timeout and returns the
// number removed. Called by the sweeper.
func (r *Registry) RemoveExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, elem := range r.entries {
		rec := elem.Value.(*domain.SessionRecord)
		if now.Sub(rec.LastAccess) > r.timeout {
			r.removeLocked(id)
			removed++
		}
	}
	return removed
}

func (r *Registry) insertLocked(rec *domain.SessionRecord) {
	// Eviction is unconditional: the least recently used record goes first.
	for len(r.entries) >= r.capacity {
		front := r.recency.Front()
		if front == nil {
			break
		}
		r.removeLocked(front.Value.(*domain.SessionRecord).SessionID)
	}
	r.entries[rec.SessionID] = r.recency.PushBack(rec)
}

func (r *Registry) removeLocked(id string) {
	if elem, ok := r.entries[id]; ok {
		r.recency.Remove(elem)
		delete(r.entries, id)
	}
}

func (r *Registry) truncateMessages(rec *domain.SessionRecord) {
	limit := 2 * r.maxTurns
	if len(rec.Messages) > limit {
		rec.Messages = rec.Messages[len(rec.Messages)-limit:]
	}
}
