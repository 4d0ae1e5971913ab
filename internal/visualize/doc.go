// Package visualize renders the exploration figures and prints the
// synthesis report.
//
// Three figures are produced, each written as one image into the charts
// directory: the target distribution (2x2), the order book analysis
// (2x3) and the trade analysis (2x2). Panels whose columns are missing
// are replaced by a placeholder and reported; an absent dataset skips its
// figure with a single notice.
package visualize
