// Package errors defines the typed application errors used across volscope.
//
// Internal helpers return *AppError values wrapping their cause; the loader
// and visualizer boundaries turn them into console notices and absent
// results so an exploration session is never interrupted.
package errors
