// Package cell builds single-cell biophysical models from reconstructed
// morphologies.
//
// # Reading Guide
//
// Start with these files:
//   - section.go: Section geometry, mechanism insertion and parameter access
//   - cell.go: Cell lists (soma, dend, axon, all) and section selectors
//   - build.go: the fixed build procedure (import, axon stub, insert, discretize, assign)
//
// # Architecture
//
// The cell package holds the model; supporting data lives in sub-packages:
//   - cell/swc/: SWC morphology reading and sample-level edits
//   - cell/mech/: mechanism catalogue (range parameters, defaults, ions)
//   - cell/trace/: build step recording
//   - cell/export/: YAML, JSON and hoc output of a built cell
//
// Parameter sets are plain data (Params) and can be loaded from YAML or taken
// from Presets. Numerical simulation of the resulting model is left to an
// external compartmental simulator.
package cell
