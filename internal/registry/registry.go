package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vvka-141/simplepg/internal/connection"
	"github.com/vvka-141/simplepg/internal/logging"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// Factory builds the Connection for a role. It is called at most once per
// role between Resets, and again only after a failed attempt.
type Factory func(ctx context.Context, role simplepg.Role) (*connection.Connection, error)

// Registry hands out one shared Connection per role, creating it on first use.
//
// Concurrent first access to the same role results in a single Factory call;
// every caller receives that call's result. Failures are not cached.
type Registry struct {
	factory Factory
	logger  simplepg.Logger

	mu    sync.RWMutex
	conns map[simplepg.Role]*connection.Connection
	group singleflight.Group
}

// New creates an empty Registry. A nil logger discards output.
func New(factory Factory, logger simplepg.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Registry{
		factory: factory,
		logger:  logger,
		conns:   make(map[simplepg.Role]*connection.Connection),
	}
}

// Data returns the connection for the application data database.
func (r *Registry) Data(ctx context.Context) (*connection.Connection, error) {
	return r.Get(ctx, simplepg.RoleData)
}

// Auth returns the connection for the authentication database.
func (r *Registry) Auth(ctx context.Context) (*connection.Connection, error) {
	return r.Get(ctx, simplepg.RoleAuth)
}

// Get returns the cached Connection for role, creating it if needed.
// Later calls return the same instance until Reset.
func (r *Registry) Get(ctx context.Context, role simplepg.Role) (*connection.Connection, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%q: %w", role, simplepg.ErrUnknownRole)
	}

	if conn := r.cached(role); conn != nil {
		return conn, nil
	}

	v, err, _ := r.group.Do(string(role), func() (any, error) {
		if conn := r.cached(role); conn != nil {
			return conn, nil
		}

		conn, err := r.factory(ctx, role)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.conns[role] = conn
		r.mu.Unlock()

		r.logger.Info("created a new db %s connection object", role)
		return conn, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create %s connection: %w", role, err)
	}
	return v.(*connection.Connection), nil
}

func (r *Registry) cached(role simplepg.Role) *connection.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[role]
}

// Reset closes every cached Connection and empties the registry, so the next
// Get builds a fresh one. Intended for tests and process shutdown.
func (r *Registry) Reset(ctx context.Context) error {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[simplepg.Role]*connection.Connection)
	r.mu.Unlock()

	var errs []error
	for role, conn := range conns {
		if err := conn.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s connection: %w", role, err))
		}
	}
	return errors.Join(errs...)
}
