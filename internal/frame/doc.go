// Package frame holds the in-memory tables produced by the loader.
//
// A Table wraps a gota DataFrame and adds the handful of column
// operations exploration needs: null masks, head, row filters and the
// descriptive statistics printed by summaries (count, mean, sample std,
// linear-interpolated quartiles, bias-corrected skew and kurtosis,
// pairwise Pearson correlation, ordered group means and value counts).
// Statistics skip missing values.
package frame
