package domain

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// Column names shared by the order book, trade and target files.
const (
	ColStockID         = "stock_id"
	ColTimeID          = "time_id"
	ColSecondsInBucket = "seconds_in_bucket"
	ColRowID           = "row_id"

	ColBidPrice1 = "bid_price1"
	ColAskPrice1 = "ask_price1"
	ColBidPrice2 = "bid_price2"
	ColAskPrice2 = "ask_price2"
	ColBidSize1  = "bid_size1"
	ColAskSize1  = "ask_size1"
	ColBidSize2  = "bid_size2"
	ColAskSize2  = "ask_size2"

	ColPrice      = "price"
	ColSize       = "size"
	ColOrderCount = "order_count"

	ColTarget = "target"
)

// PriceLevelColumns are the book price columns used for the level correlation matrix.
var PriceLevelColumns = []string{ColBidPrice1, ColBidPrice2, ColAskPrice1, ColAskPrice2}

// DatasetKind selects between the two columnar datasets.
type DatasetKind string

const (
	KindBook  DatasetKind = "book"
	KindTrade DatasetKind = "trade"
)

// Split selects the train or test half of a dataset.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// OrderBookRow is one order book snapshot. StockID is carried by the
// stock_id=N partition directory rather than by the file itself. The
// int16 columns are held as int32 in memory and written through
// OrderBookSchema.
type OrderBookRow struct {
	StockID         int     `parquet:"-" json:"stock_id"`
	TimeID          int32   `parquet:"time_id" json:"time_id"`
	SecondsInBucket int32   `parquet:"seconds_in_bucket" json:"seconds_in_bucket"`
	BidPrice1       float32 `parquet:"bid_price1" json:"bid_price1"`
	AskPrice1       float32 `parquet:"ask_price1" json:"ask_price1"`
	BidPrice2       float32 `parquet:"bid_price2" json:"bid_price2"`
	AskPrice2       float32 `parquet:"ask_price2" json:"ask_price2"`
	BidSize1        int32   `parquet:"bid_size1" json:"bid_size1"`
	AskSize1        int32   `parquet:"ask_size1" json:"ask_size1"`
	BidSize2        int32   `parquet:"bid_size2" json:"bid_size2"`
	AskSize2        int32   `parquet:"ask_size2" json:"ask_size2"`
}

// Spread returns the level-1 bid/ask spread.
func (r OrderBookRow) Spread() float64 {
	return float64(r.AskPrice1) - float64(r.BidPrice1)
}

// TradeRow is one executed trade aggregated over a second. Written
// through TradeSchema.
type TradeRow struct {
	StockID         int     `parquet:"-" json:"stock_id"`
	TimeID          int32   `parquet:"time_id" json:"time_id"`
	SecondsInBucket int32   `parquet:"seconds_in_bucket" json:"seconds_in_bucket"`
	Price           float32 `parquet:"price" json:"price"`
	Size            int32   `parquet:"size" json:"size"`
	OrderCount      int32   `parquet:"order_count" json:"order_count"`
}

// The file layouts declare time_id, seconds_in_bucket and order_count as
// INT(16) logical columns. parquet-go derives that from int16 fields but
// cannot write int16 values, so rows are written from the int32 structs
// above against these schemas.
type orderBookLayout struct {
	TimeID          int16   `parquet:"time_id"`
	SecondsInBucket int16   `parquet:"seconds_in_bucket"`
	BidPrice1       float32 `parquet:"bid_price1"`
	AskPrice1       float32 `parquet:"ask_price1"`
	BidPrice2       float32 `parquet:"bid_price2"`
	AskPrice2       float32 `parquet:"ask_price2"`
	BidSize1        int32   `parquet:"bid_size1"`
	AskSize1        int32   `parquet:"ask_size1"`
	BidSize2        int32   `parquet:"bid_size2"`
	AskSize2        int32   `parquet:"ask_size2"`
}

type tradeLayout struct {
	TimeID          int16   `parquet:"time_id"`
	SecondsInBucket int16   `parquet:"seconds_in_bucket"`
	Price           float32 `parquet:"price"`
	Size            int32   `parquet:"size"`
	OrderCount      int16   `parquet:"order_count"`
}

var (
	// OrderBookSchema is the on-disk schema of book_*.parquet files.
	OrderBookSchema = parquet.SchemaOf(orderBookLayout{})
	// TradeSchema is the on-disk schema of trade_*.parquet files.
	TradeSchema = parquet.SchemaOf(tradeLayout{})
)

// WriteOrderBook writes rows to a single parquet file.
func WriteOrderBook(path string, rows []OrderBookRow) error {
	return parquet.WriteFile(path, rows, OrderBookSchema)
}

// WriteTrades writes rows to a single parquet file.
func WriteTrades(path string, rows []TradeRow) error {
	return parquet.WriteFile(path, rows, TradeSchema)
}

// TargetRow is one realized volatility label from train.csv.
type TargetRow struct {
	StockID int     `json:"stock_id" csv:"stock_id"`
	TimeID  int     `json:"time_id" csv:"time_id"`
	Target  float64 `json:"target" csv:"target" validate:"min=0"`
}

// Record renders the row in train.csv column order.
func (r TargetRow) Record() []string {
	return []string{fmt.Sprint(r.StockID), fmt.Sprint(r.TimeID), fmt.Sprintf("%g", r.Target)}
}

// TestRow is one prediction request from test.csv.
type TestRow struct {
	StockID int    `json:"stock_id" csv:"stock_id"`
	TimeID  int    `json:"time_id" csv:"time_id"`
	RowID   string `json:"row_id" csv:"row_id"`
}

// Record renders the row in test.csv column order.
func (r TestRow) Record() []string {
	return []string{fmt.Sprint(r.StockID), fmt.Sprint(r.TimeID), r.RowID}
}

// TargetHeader and TestHeader are the CSV headers of the label files.
var (
	TargetHeader = []string{ColStockID, ColTimeID, ColTarget}
	TestHeader   = []string{ColStockID, ColTimeID, ColRowID}
)
