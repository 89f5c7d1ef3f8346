package memory

import (
	"context"
	"sort"
	"sync"

	rental "venue-pos/internal/rental/domain"
)

// OpenSessionRepository holds open sessions keyed by device name. The
// mutex makes the busy check and the insert a single step, so two
// concurrent opens for one device cannot both succeed.
type OpenSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]rental.Session
}

// NewOpenSessionRepository constructs an empty repository.
func NewOpenSessionRepository() *OpenSessionRepository {
	return &OpenSessionRepository{sessions: make(map[string]rental.Session)}
}

// Open registers a session; fails when the device is already bound.
func (r *OpenSessionRepository) Open(ctx context.Context, session rental.Session) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.sessions[session.Device]; busy {
		return rental.ErrDeviceBusy
	}
	r.sessions[session.Device] = session
	return nil
}

// Get returns the open session for a device.
func (r *OpenSessionRepository) Get(ctx context.Context, device string) (rental.Session, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[device]
	if !ok {
		return rental.Session{}, rental.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// Attach appends a line item to an open session.
func (r *OpenSessionRepository) Attach(ctx context.Context, device string, item rental.LineItem) (rental.Session, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[device]
	if !ok {
		return rental.Session{}, rental.ErrSessionNotFound
	}
	session.Items = append(session.Items, item)
	r.sessions[device] = session
	return cloneSession(session), nil
}

// Remove drops a session from the open set, provided its line-item
// count still matches seen. The check and the delete share the lock, so
// an attach that lands mid-close surfaces as ErrItemsPending.
func (r *OpenSessionRepository) Remove(ctx context.Context, device string, seen int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[device]
	if !ok {
		return rental.ErrSessionNotFound
	}
	if len(session.Items) > seen {
		return rental.ErrItemsPending
	}
	delete(r.sessions, device)
	return nil
}

// List returns open sessions sorted by device name.
func (r *OpenSessionRepository) List(ctx context.Context) ([]rental.Session, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]rental.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		result = append(result, cloneSession(session))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Device < result[j].Device })
	return result, nil
}

// cloneSession detaches the line item slice from the stored session.
func cloneSession(session rental.Session) rental.Session {
	items := make([]rental.LineItem, len(session.Items))
	copy(items, session.Items)
	session.Items = items
	return session
}
