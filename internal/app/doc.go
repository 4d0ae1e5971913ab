// Package app wires one exploration run for the command-line tools.
//
// NewApplication loads the configuration (defaults, YAML file, VOLSCOPE_*
// environment), applies the command-line overrides, validates the output
// directories and initializes logging and telemetry before building the
// loader, the visualizer and the optional exporters. Errors returned by
// NewApplication are startup failures; the commands exit non-zero on them.
//
//	a, err := app.NewApplication(ctx, app.Options{DataRoot: "raw_data"})
//	if err != nil {
//		return err
//	}
//	defer a.Stop(ctx)
//	_, err = a.Explore(ctx)
//
// Explore and Visualize never fail because of missing or unreadable data:
// those are reported on the console and represented as nil tables. Only
// export failures are returned.
package app
