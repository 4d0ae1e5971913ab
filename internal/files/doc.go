// Package files provides file system discovery for the competition
// datasets.
//
// Discovery resolves a columnar dataset path into the data files that
// make it up. The order book and trade datasets are usually stored as a
// hive-partitioned directory:
//
//	book_train.parquet/
//	    stock_id=0/part-0.parquet
//	    stock_id=1/part-0.parquet
//
// ResolveParquet returns partitions in numeric order of their value and
// files within a partition in name order, so reads are deterministic.
//
// Example usage:
//
//	discovery := files.NewDiscovery("raw_data")
//	ds, err := discovery.ResolveParquet("book_train.parquet")
//	if err != nil {
//	    return err
//	}
//	for _, f := range ds.Files {
//	    // read f.Path
//	}
package files
