package main

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meikuraledutech/sankey"
)

var errSessionNotFound = errors.New("editing session not found")

// session is one open editor. The Editor is single-threaded, so every
// request touching it holds mu.
type session struct {
	mu        sync.Mutex
	owner     string
	diagramID string
	editor    *sankey.Editor
}

// sessionCache holds open editing sessions, evicting the least recently
// used one when full.
type sessionCache struct {
	cache *lru.Cache[string, *session]
}

func newSessionCache(size int) (*sessionCache, error) {
	c, err := lru.New[string, *session](size)
	if err != nil {
		return nil, err
	}
	return &sessionCache{cache: c}, nil
}

// open registers a session for owner and returns it with its ID.
func (c *sessionCache) open(owner, diagramID string, e *sankey.Editor) (string, *session) {
	id := uuid.NewString()
	s := &session{owner: owner, diagramID: diagramID, editor: e}
	c.cache.Add(id, s)
	return id, s
}

// get returns the session only to the owner that opened it.
func (c *sessionCache) get(owner, id string) (*session, error) {
	s, ok := c.cache.Get(id)
	if !ok || s.owner != owner {
		return nil, errSessionNotFound
	}
	return s, nil
}

func (c *sessionCache) close(owner, id string) error {
	if _, err := c.get(owner, id); err != nil {
		return err
	}
	c.cache.Remove(id)
	return nil
}
