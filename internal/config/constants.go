package config

// Application constants
const (
	AppName    = "volscope"
	AppVersion = "0.3.0"

	DefaultDataRoot   = "./raw_data"
	DefaultChartsDir  = "charts"
	DefaultSampleRows = 5000

	// Well-known dataset file names under the data root
	BookTrainFile  = "book_train.parquet"
	BookTestFile   = "book_test.parquet"
	TradeTrainFile = "trade_train.parquet"
	TradeTestFile  = "trade_test.parquet"
	TrainCSVFile   = "train.csv"
	TestCSVFile    = "test.csv"
)
