package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// ErrNoSessionScripted is returned by Connector.Connect when its queue is empty.
var ErrNoSessionScripted = errors.New("fakes: no session scripted")

// Connector hands out scripted sessions in order. Queued connect errors
// are consumed before sessions. Implements io.Closer.
type Connector struct {
	mu       sync.Mutex
	sessions []*Session
	errs     []error
	connects int
	closed   bool
}

var _ simplepg.Connector = (*Connector)(nil)

func NewConnector(sessions ...*Session) *Connector {
	return &Connector{sessions: sessions}
}

// FailNext queues errs for the next Connect calls.
func (c *Connector) FailNext(errs ...error) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, errs...)
	return c
}

// AddSession queues more sessions.
func (c *Connector) AddSession(sessions ...*Session) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = append(c.sessions, sessions...)
	return c
}

func (c *Connector) Connect(ctx context.Context) (simplepg.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connects++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(c.sessions) == 0 {
		return nil, ErrNoSessionScripted
	}
	s := c.sessions[0]
	c.sessions = c.sessions[1:]
	return s, nil
}

// Connects returns how many times Connect was called.
func (c *Connector) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
