// Package synth generates a small synthetic dataset in the layout the
// loader expects: hive-partitioned book and trade Parquet directories
// plus the train.csv and test.csv label files.
//
// Prices follow a per-bucket random walk and each target is the realized
// volatility of the bucket's weighted average price, so the figures and
// the report show plausible shapes. Generation is deterministic for a
// given seed.
package synth
