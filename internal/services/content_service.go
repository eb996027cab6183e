package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"shieldsite/internal/contenttree"
	"shieldsite/internal/models"
	"shieldsite/internal/repository"
)

// ErrPersistence marks a failed write to storage. Callers keep their staged edits
// when they see it so the save can be retried.
var ErrPersistence = errors.New("persistence failure")

var ErrSessionClosed = errors.New("edit session already committed or discarded")

// ContentService owns the live site content tree: it loads it from storage, hands
// read-only snapshots to public pages, and promotes committed trees.
type ContentService struct {
	repo *repository.ContentRepository

	mu     sync.RWMutex
	live   contenttree.Tree
	loaded bool
}

func NewContentService(repo *repository.ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

// LoadLive fetches the full tree from storage and caches it. Any failure, and an
// empty store, both yield an empty tree: the caller falls back to its defaults.
func (s *ContentService) LoadLive(ctx context.Context) contenttree.Tree {
	tree, err := s.Load(ctx)
	if err != nil {
		log.Printf("failed to load site content, serving empty tree: %v", err)
		return contenttree.Tree{}
	}
	return tree
}

// Load fetches the full tree from storage and caches it. Unlike LoadLive it
// reports read and decode failures; an empty store is still an empty tree.
func (s *ContentService) Load(ctx context.Context) (contenttree.Tree, error) {
	tree, err := s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load site content: %w", err)
	}
	s.promote(tree)
	return tree, nil
}

// Live returns the cached live tree, loading it on first use.
func (s *ContentService) Live(ctx context.Context) contenttree.Tree {
	s.mu.RLock()
	live, loaded := s.live, s.loaded
	s.mu.RUnlock()
	if loaded {
		return live
	}
	return s.LoadLive(ctx)
}

// Commit persists tree as the whole site content, replacing whatever is stored,
// then makes it the live tree. There is no version check: the last commit wins.
func (s *ContentService) Commit(ctx context.Context, tree contenttree.Tree, updatedBy string) error {
	if tree == nil {
		tree = contenttree.Tree{}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode site content: %w", err)
	}
	row := &models.SiteContent{Content: data, UpdatedBy: updatedBy}
	if err := s.repo.Replace(ctx, row); err != nil {
		return fmt.Errorf("%w: save site content: %w", ErrPersistence, err)
	}
	s.promote(tree)
	log.Printf("site content updated by %s", updatedBy)
	return nil
}

// Begin starts an edit session over a structural copy of the live tree.
func (s *ContentService) Begin(ctx context.Context, editor string) *EditSession {
	base := s.Live(ctx)
	return &EditSession{
		store:  s,
		editor: editor,
		base:   base,
		staged: contenttree.Clone(base),
	}
}

func (s *ContentService) fetch(ctx context.Context) (contenttree.Tree, error) {
	row, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return contenttree.Tree{}, nil
	}
	return contenttree.Decode(row.Content)
}

func (s *ContentService) promote(tree contenttree.Tree) {
	s.mu.Lock()
	s.live = tree
	s.loaded = true
	s.mu.Unlock()
}

// EditSession holds one editor's staged tree. Each Set derives a new snapshot
// from the previous one, so writes apply in the order they are issued and the
// live tree is never touched until Commit.
type EditSession struct {
	store  *ContentService
	editor string

	mu     sync.Mutex
	base   contenttree.Tree
	staged contenttree.Tree
	closed bool
}

func (e *EditSession) Editor() string { return e.editor }

// Staged returns the current staged snapshot.
func (e *EditSession) Staged() contenttree.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.staged
}

func (e *EditSession) Get(path string) string {
	return contenttree.Get(e.Staged(), path)
}

// Dirty reports whether the staged tree differs from the tree the session began with.
func (e *EditSession) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !contenttree.Equal(e.base, e.staged)
}

// Set writes value at path into the staged tree and returns the new snapshot.
func (e *EditSession) Set(path, value string) (contenttree.Tree, error) {
	return e.write(path, value)
}

// SetNode replaces the sub-tree at path in the staged tree.
func (e *EditSession) SetNode(path string, node contenttree.Tree) (contenttree.Tree, error) {
	return e.write(path, node)
}

// Replace swaps the whole staged tree, as when a client uploads its own staged copy.
func (e *EditSession) Replace(tree contenttree.Tree) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionClosed
	}
	if tree == nil {
		tree = contenttree.Tree{}
	}
	e.staged = tree
	return nil
}

func (e *EditSession) write(path string, value any) (contenttree.Tree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrSessionClosed
	}
	next, err := contenttree.Write(e.staged, path, value)
	if err != nil {
		return nil, err
	}
	e.staged = next
	return next, nil
}

// Commit persists the staged tree and promotes it to live. On failure the session
// stays open with its staged edits intact.
func (e *EditSession) Commit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionClosed
	}
	if err := e.store.Commit(ctx, e.staged, e.editor); err != nil {
		return err
	}
	e.closed = true
	return nil
}

// Discard drops the staged tree. Nothing was persisted, so nothing is undone.
func (e *EditSession) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.staged = e.base
	e.closed = true
}

func (e *EditSession) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
