package loader

import (
	"context"
	"log/slog"
)

// FileStatus is the availability of one dataset file
type FileStatus struct {
	Name   string
	Path   string
	Exists bool
}

// Availability lists the six dataset files in reporting order
type Availability []FileStatus

// Map returns name -> exists
func (a Availability) Map() map[string]bool {
	m := make(map[string]bool, len(a))
	for _, s := range a {
		m[s.Name] = s.Exists
	}
	return m
}

// Has reports whether the named file was found
func (a Availability) Has(name string) bool {
	return a.Map()[name]
}

// CheckAvailability reports, for each dataset file, whether it exists now.
// One status line per file is printed; missing files are not an error.
func (l *Loader) CheckAvailability(ctx context.Context) Availability {
	ctx, span := l.telemetry.StartSpan(ctx, "loader.check_availability")
	defer span.End()

	var result Availability
	for _, np := range l.paths.All() {
		exists := l.discovery.Exists(np.Path)
		mark := "✗"
		if exists {
			mark = "✓"
		}
		l.printf("%-12s: %s (%s)\n", np.Name, mark, np.Path)
		l.metrics().RecordFileChecked(ctx, np.Name, exists)
		result = append(result, FileStatus{Name: np.Name, Path: np.Path, Exists: exists})
	}

	found := 0
	for _, s := range result {
		if s.Exists {
			found++
		}
	}
	l.logger.InfoContext(ctx, "Dataset availability checked",
		slog.Int("found", found),
		slog.Int("expected", len(result)))

	return result
}
