// Package bootstrap wires configuration, logging, telemetry and storage into
// one lifecycle for a single artifactstore command.
//
//	app, err := bootstrap.NewApp(cfg)
//	err = app.RunTask(ctx, func(ctx context.Context, app *bootstrap.App) error {
//	    _, err := app.Store().StoreAll(ctx, root, prefix)
//	    return err
//	})
//
// Components start in registration order (telemetry, then storage) and stop
// in reverse, so metrics recorded by storage are flushed on the way out.
package bootstrap
