package cli

import (
	"context"

	"github.com/vvka-141/simplepg/internal/config"
	"github.com/vvka-141/simplepg/internal/connection"
	"github.com/vvka-141/simplepg/internal/logging"
	"github.com/vvka-141/simplepg/internal/registry"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newFactory builds role connections; tests replace it with scripted fakes.
var newFactory = registry.NewFactory

// app is the composition root for one command invocation.
type app struct {
	settings *config.Settings
	logger   simplepg.Logger
	registry *registry.Registry
	sync     func() error
}

func newApp() (*app, error) {
	if err := validateLogFormat(rootFlags.logFormat); err != nil {
		return nil, err
	}

	a := &app{sync: func() error { return nil }}
	if rootFlags.logFormat == logFormatJSON {
		zl, err := logging.NewJSONLogger(rootFlags.verbose)
		if err != nil {
			return nil, err
		}
		a.logger = zl
		a.sync = zl.Sync
	} else {
		a.logger = logging.NewConsoleLogger(rootFlags.verbose)
	}

	settings, err := config.LoadSettings(rootFlags.configPath, rootFlags.envFile)
	if err != nil {
		return nil, err
	}
	a.settings = settings
	a.logger.Verbose("diagnostic id %s, reconnect delay %v", settings.UniqueID, settings.ReconnectDelay)

	a.registry = registry.New(newFactory(settings, a.logger), a.logger)
	return a, nil
}

func (a *app) connection(ctx context.Context, role string) (*connection.Connection, error) {
	r, err := simplepg.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return a.registry.Get(ctx, r)
}

// close releases every connection the command opened.
func (a *app) close(ctx context.Context) error {
	err := a.registry.Reset(ctx)
	// Syncing a zap logger bound to a terminal fails with ENOTTY; it is not actionable.
	_ = a.sync()
	return err
}

// withApp runs fn with a fresh app and always closes it. Close failures
// do not change the outcome of the command.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(ctx); err != nil {
			a.logger.Verbose("close: %v", err)
		}
	}()
	return fn(a)
}
