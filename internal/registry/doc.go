// Package registry caches one Connection per role ("data", "auth").
//
// A Registry is owned by the composition root rather than living in a
// package-level variable, so tests can build their own and Reset it:
//
//	reg := registry.New(registry.NewFactory(settings, logger), logger)
//	defer reg.Reset(ctx)
//
//	conn, err := reg.Data(ctx)
package registry
