package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoEditSession = errors.New("no edit session in progress")

// EditSessionTTL is how long an untouched session is kept. It matches the admin
// cookie lifetime: once the cookie is gone, nobody can reach the session again.
const EditSessionTTL = 7 * 24 * time.Hour

// EditSessions tracks the open edit session of each editor. An editor has at
// most one session; beginning again replaces the previous one.
type EditSessions struct {
	content *ContentService
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*trackedSession
}

type trackedSession struct {
	session *EditSession
	touched time.Time
}

func NewEditSessions(content *ContentService) *EditSessions {
	return &EditSessions{
		content:  content,
		ttl:      EditSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*trackedSession),
	}
}

// Begin opens a fresh session for editor and drops sessions left idle past the TTL.
func (r *EditSessions) Begin(ctx context.Context, editor string) *EditSession {
	session := r.content.Begin(ctx, editor)
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, tracked := range r.sessions {
		if now.Sub(tracked.touched) > r.ttl {
			tracked.session.Discard()
			delete(r.sessions, id)
		}
	}
	r.sessions[editor] = &trackedSession{session: session, touched: now}
	return session
}

// Get returns the editor's open session.
func (r *EditSessions) Get(editor string) (*EditSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracked, ok := r.sessions[editor]
	if !ok || tracked.session.Closed() {
		delete(r.sessions, editor)
		return nil, ErrNoEditSession
	}
	now := r.now()
	if now.Sub(tracked.touched) > r.ttl {
		tracked.session.Discard()
		delete(r.sessions, editor)
		return nil, ErrNoEditSession
	}
	tracked.touched = now
	return tracked.session, nil
}

// Len reports how many sessions are held.
func (r *EditSessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Commit commits the editor's session and forgets it. A failed commit keeps the
// session, and its staged edits, for a retry.
func (r *EditSessions) Commit(ctx context.Context, editor string) error {
	session, err := r.Get(editor)
	if err != nil {
		return err
	}
	if err := session.Commit(ctx); err != nil {
		return err
	}
	r.forget(editor, session)
	return nil
}

func (r *EditSessions) Discard(editor string) error {
	session, err := r.Get(editor)
	if err != nil {
		return err
	}
	session.Discard()
	r.forget(editor, session)
	return nil
}

// Forget drops whatever the editor has staged, as on logout. It is a no-op when
// the editor has no session.
func (r *EditSessions) Forget(editor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tracked, ok := r.sessions[editor]; ok {
		tracked.session.Discard()
		delete(r.sessions, editor)
	}
}

func (r *EditSessions) forget(editor string, session *EditSession) {
	r.mu.Lock()
	if tracked, ok := r.sessions[editor]; ok && tracked.session == session {
		delete(r.sessions, editor)
	}
	r.mu.Unlock()
}
