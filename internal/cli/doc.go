// Package cli implements the knitstack command-line interface.
//
// The commands read a transfer script, simulate it step by step and either
// print the recorded steps, export frames or serve them over HTTP. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - simulate: Run a script and print one row per recorded step
//   - layout: Export frame geometry as JSON
//   - render: Generate SVG, PNG, PDF, JSON or Graphviz output per step
//   - play: Step through a script interactively
//   - serve: Start the viewer API
//   - cache: Manage the history and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows the simulator's per-transfer capture and release counts. Loggers
// are passed through context.Context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli
