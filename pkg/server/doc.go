// Package server exposes simulated scripts to a browser viewer over HTTP.
//
// The server is stateless: every request carries the script text as its
// body and the pipeline cache makes repeated requests for the same script
// cheap. Routes:
//
//	GET  /healthz                 liveness and build version
//	POST /api/steps               step list, plus the error that stopped the simulation
//	POST /api/steps/{n}           one step with its snapshot
//	POST /api/steps/{n}/frame     laid-out frame as JSON
//	POST /api/steps/{n}/svg       rendered frame
//	POST /api/steps/{n}/dot       yarn topology as Graphviz DOT
//
// Step indices may be negative to count from the end. Query parameters
// style, labels, title, detailed and unwind adjust rendering and playback.
//
// A simulation that fails part way still answers: the step list carries the
// error and the steps recorded before it, so a viewer can stop on the last
// good state.
package server
