package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "volscope/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Partition is one key=value directory of a hive-partitioned dataset
type Partition struct {
	Key   string
	Value string
	Path  string
	Files []FileInfo
}

// DataFile is a data file of a dataset along with the partition it was
// found under, if any
type DataFile struct {
	FileInfo
	PartitionValue string
	HasPartition   bool
}

// Dataset is a resolved columnar dataset: either a single file or a
// directory of partitions. Files lists every data file in read order.
type Dataset struct {
	Path        string
	Partitioned bool // directory layout
	Partitions  []Partition
	Files       []DataFile
}

// PartitionKey returns the partition column name, or "" for a plain file
func (ds *Dataset) PartitionKey() string {
	if len(ds.Partitions) == 0 {
		return ""
	}
	return ds.Partitions[0].Key
}

// TotalSize returns the summed size of all data files
func (ds *Dataset) TotalSize() int64 {
	var total int64
	for _, f := range ds.Files {
		total += f.Size
	}
	return total
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// Exists reports whether path exists, as a file or a directory
func (d *Discovery) Exists(path string) bool {
	fullPath := d.resolve(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("Exists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// ResolveParquet resolves path into the data files that make up a
// columnar dataset. A regular file is returned as-is. A directory is read
// as a hive layout: key=value subdirectories ordered by value (numerically
// when every value is an integer), and data files within each partition
// ordered by name. Data files placed directly in the directory are read
// first, as an unpartitioned group.
func (d *Discovery) ResolveParquet(path string) (*Dataset, error) {
	fullPath := d.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fullPath)
		}
		return nil, apperrors.NewStorageError("failed to stat dataset", err).WithContext("path", fullPath)
	}

	if !info.IsDir() {
		return &Dataset{
			Path: fullPath,
			Files: []DataFile{{FileInfo: FileInfo{
				Path:    fullPath,
				Name:    info.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}}},
		}, nil
	}

	ds := &Dataset{Path: fullPath, Partitioned: true}

	direct, err := d.FindDataFiles(fullPath)
	if err != nil {
		return nil, err
	}
	for _, f := range direct {
		ds.Files = append(ds.Files, DataFile{FileInfo: f})
	}

	dirs, err := d.ListDirectories(fullPath)
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		key, value, ok := strings.Cut(dir.Name, "=")
		if !ok || key == "" {
			slog.Debug("Skipping non-partition directory", slog.String("path", dir.Path))
			continue
		}
		if ds.PartitionKey() != "" && key != ds.PartitionKey() {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("mixed partition keys %q and %q", ds.PartitionKey(), key), nil).
				WithContext("path", fullPath)
		}
		files, err := d.FindDataFiles(dir.Path)
		if err != nil {
			return nil, err
		}
		ds.Partitions = append(ds.Partitions, Partition{Key: key, Value: value, Path: dir.Path, Files: files})
	}

	SortPartitions(ds.Partitions)
	for _, p := range ds.Partitions {
		for _, f := range p.Files {
			ds.Files = append(ds.Files, DataFile{FileInfo: f, PartitionValue: p.Value, HasPartition: true})
		}
	}

	if len(ds.Files) == 0 {
		return nil, apperrors.NewNotFoundError(fullPath).WithContext("reason", "no data files")
	}

	slog.Debug("Resolved dataset",
		slog.String("path", fullPath),
		slog.Int("partitions", len(ds.Partitions)),
		slog.Int("files", len(ds.Files)))

	return ds, nil
}

// SortPartitions orders partitions by value, numerically when every value
// parses as an integer and lexically otherwise
func SortPartitions(parts []Partition) {
	numeric := true
	values := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p.Value, 10, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}

	if numeric {
		idx := make(map[string]int64, len(parts))
		for i, p := range parts {
			idx[p.Path] = values[i]
		}
		sort.SliceStable(parts, func(i, j int) bool {
			return idx[parts[i].Path] < idx[parts[j].Path]
		})
		return
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Value < parts[j].Value
	})
}

// FindDataFiles lists the data files in dir ordered by name. Hidden files
// and metadata files (leading "." or "_") are skipped.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read directory", err).WithContext("path", fullPath)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if ext := filepath.Ext(name); ext != "" && !strings.EqualFold(ext, ".parquet") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// ListDirectories lists all subdirectories in the specified directory
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			dirs = append(dirs, FileInfo{
				Path:    filepath.Join(fullPath, entry.Name()),
				Name:    entry.Name(),
				Size:    0,
				ModTime: info.ModTime(),
				IsDir:   true,
			})
		}
	}

	return dirs, nil
}
