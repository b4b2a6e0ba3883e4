// Package frame provides render drivers that advance a toast.Registry.
//
// Ticker runs on a goroutine at a fixed frame rate and reports measured
// wall-clock deltas. Manual only advances when Step is called, which makes
// animation timing deterministic for tests and headless simulation.
package frame
