package registry

import (
	"context"
	"io"

	"github.com/vvka-141/simplepg/internal/config"
	"github.com/vvka-141/simplepg/internal/connection"
	"github.com/vvka-141/simplepg/internal/db"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// NewFactory returns a Factory that opens connections from resolved settings.
// Every role shares the reconnect delay and diagnostic id.
func NewFactory(settings *config.Settings, logger simplepg.Logger) Factory {
	return func(ctx context.Context, role simplepg.Role) (*connection.Connection, error) {
		cfg, err := settings.Role(role)
		if err != nil {
			return nil, err
		}

		connector, err := db.NewConnector(cfg, logger)
		if err != nil {
			return nil, err
		}

		conn, err := connection.New(ctx, connector, connection.Options{
			ReconnectDelay: settings.ReconnectDelay,
			DiagnosticID:   settings.UniqueID,
			Logger:         logger,
		})
		if err != nil {
			if closer, ok := connector.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil, err
		}
		return conn, nil
	}
}
