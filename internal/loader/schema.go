package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"volscope/internal/files"
	"volscope/internal/infrastructure"
)

// pandasMetadataKey is the footer key pandas stores its schema under
const pandasMetadataKey = "pandas"

// ColumnInfo describes one leaf column of a parquet schema
type ColumnInfo struct {
	Name     string
	Physical string
	DType    string
	Optional bool
}

// SchemaInfo is the metadata of a parquet dataset, read from file footers
// without materializing any rows
type SchemaInfo struct {
	Path           string
	Files          int
	RowGroups      int
	Rows           int64
	PartitionKey   string
	Partitions     int
	PandasMetadata bool
	Columns        []ColumnInfo
	Schema         string
}

// InspectSchema reads the footer of every file of the dataset at path and
// prints row-group count, row count, partitioning and schema. It returns
// nil when the path is absent or any footer cannot be read.
func (l *Loader) InspectSchema(ctx context.Context, path string) *SchemaInfo {
	ctx, span := l.telemetry.StartSpan(ctx, "loader.inspect_schema")
	defer span.End()

	if !l.discovery.Exists(path) {
		l.notice(ctx, "File not found: "+path, slog.String("path", path))
		return nil
	}

	l.printf("\n=== Structure of %s ===\n", filepath.Base(path))

	info, err := inspect(path)
	if err != nil {
		infrastructure.RecordSpanError(span, err)
		l.metrics().RecordReadError(ctx, "schema")
		l.printf("Error reading metadata: %v\n", err)
		l.logger.ErrorContext(ctx, "Failed to read parquet metadata",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	l.printf("Row groups: %d\n", info.RowGroups)
	l.printf("Rows: %d in %d file(s)\n", info.Rows, info.Files)
	if info.PartitionKey != "" {
		l.printf("Partitioned by %s (%d partitions)\n", info.PartitionKey, info.Partitions)
	}
	l.printf("Schema: %s\n", info.Schema)
	if info.PandasMetadata {
		l.printf("Pandas metadata found\n")
	}

	l.logger.InfoContext(ctx, "Parquet schema inspected",
		slog.String("path", path),
		slog.Int("files", info.Files),
		slog.Int("row_groups", info.RowGroups),
		slog.Int64("rows", info.Rows),
		slog.Int("columns", len(info.Columns)))

	return info
}

func inspect(path string) (*SchemaInfo, error) {
	ds, err := files.NewDiscovery("").ResolveParquet(path)
	if err != nil {
		return nil, err
	}

	info := &SchemaInfo{
		Path:         path,
		Files:        len(ds.Files),
		PartitionKey: ds.PartitionKey(),
		Partitions:   len(ds.Partitions),
	}

	for i, df := range ds.Files {
		pf, f, err := openParquet(df.Path, metadataOnly...)
		if err != nil {
			return nil, err
		}
		info.RowGroups += len(pf.RowGroups())
		info.Rows += pf.NumRows()
		if _, ok := pf.Lookup(pandasMetadataKey); ok {
			info.PandasMetadata = true
		}
		if i == 0 {
			schema := pf.Schema()
			info.Schema = schema.String()
			for _, leafPath := range schema.Columns() {
				leaf, ok := schema.Lookup(leafPath...)
				if !ok {
					continue
				}
				info.Columns = append(info.Columns, ColumnInfo{
					Name:     strings.Join(leafPath, "."),
					Physical: leaf.Node.Type().Kind().String(),
					DType:    dtypeOf(leaf.Node),
					Optional: leaf.Node.Optional(),
				})
			}
		}
		f.Close()
	}

	return info, nil
}
