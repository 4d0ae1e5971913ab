// Package shared holds helpers used across the volscope packages that do
// not belong to one component.
//
// The testutil subpackage provides BufferedSlogHandler, a slog handler
// that captures records so tests can assert on what a component logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	l := loader.New(root, loader.WithLogger(logger))
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "File not found")
package shared
