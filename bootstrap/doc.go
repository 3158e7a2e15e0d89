// Package bootstrap runs a service through its lifecycle: start
// infrastructure components, wire the business layer, start the components
// registered while wiring, wait for a signal, then shut everything down in
// reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // repositories, services, routes; a.RegisterComponent(server.NewComponent(srv))
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
