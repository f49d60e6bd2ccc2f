// Package pkg provides the core libraries for knitstack, a loop topology
// simulator for two-bed knitting machines.
//
// # Overview
//
// Knitstack follows loops, pinches and yarn links through transfer
// operations and draws each recorded state as a frame. The pkg directory is
// organized into four main areas:
//
//  1. Machine model: [knit] (needles, stacks, links, transfers, snapshots)
//     and [ops] (operations and pass aggregation)
//  2. Simulation: [script] (script reader), [sim] (carriers, cards and the
//     per-line history) and [playback] (history cursor and animator)
//  3. Output: [layout] (frame geometry) and [render] (SVG, PNG, PDF, JSON
//     and Graphviz sinks)
//  4. Orchestration: [pipeline] (simulate → layout → render with caching),
//     [cache], [server] (viewer API), [errors] and [observability]
//
// # Architecture
//
// The typical data flow:
//
//	script text
//	     ↓
//	[script] package (parse lines and the initial loop chain)
//	     ↓
//	[sim] package (apply each line to a [knit] machine, record a step)
//	     ↓
//	[playback] package (history of snapshots)
//	     ↓
//	[layout] package (one frame per step)
//	     ↓
//	SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Script:   text,
//	    AllSteps: true,
//	    Formats:  []string{"svg"},
//	})
//
// Working with the machine directly:
//
//	m := knit.New(knit.WithMaxRacking(4))
//	f0 := knit.MustParseNeedle("f0")
//	m.MakeLoop(f0)
//	res, err := m.Xfer(f0, knit.MustParseNeedle("b0"))
//	snap := m.Save("after xfer")
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	KNITSTACK_TEST_REDIS=localhost:6379 go test ./pkg/cache
//
// [knit]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/knit
// [ops]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/ops
// [script]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/script
// [sim]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/sim
// [playback]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/playback
// [layout]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/knitstack/pkg/observability
package pkg
