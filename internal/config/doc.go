// Package config provides configuration management for volscope.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones
// overriding earlier ones:
//
//	1. Default() values
//	2. A YAML file (explicit path, volscope.yaml or configs/volscope.yaml)
//	3. Environment variables prefixed with VOLSCOPE_
//
// # Environment Variables
//
//	VOLSCOPE_DATA_ROOT=./raw_data
//	VOLSCOPE_SAMPLE_BOOK_ROWS=5000
//	VOLSCOPE_PLOT_OUTPUT_DIR=charts
//	VOLSCOPE_PLOT_FORMAT=svg
//	VOLSCOPE_LOGGING_LEVEL=debug
//	VOLSCOPE_TELEMETRY_METRICS_TEXTFILE=charts/metrics.prom
//
// # Dataset Paths
//
// DatasetPaths derives the six well-known input files from the data root:
//
//	paths := cfg.DatasetPaths()
//	for _, np := range paths.All() {
//	    fmt.Println(np.Name, np.Path)
//	}
package config
