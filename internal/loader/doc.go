// Package loader finds and loads the order book, trade and label files of
// one dataset root.
//
// The six expected files are book_train.parquet, book_test.parquet,
// trade_train.parquet, trade_test.parquet, train.csv and test.csv. The
// parquet datasets may be single files or hive-partitioned directories;
// partition keys become columns appended after the file columns.
//
// Every operation reports progress on the console writer and returns nil
// instead of an error when a file is missing or unreadable, so an
// exploration session continues with whatever data is available.
package loader
