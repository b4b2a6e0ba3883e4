// Package daemon provides the orchestration behind toastd.
// It feeds commands read from a stream into the popup registry, applies
// reloaded configuration and reports popup events, independent of the
// toolkit that draws the popups.
package daemon
