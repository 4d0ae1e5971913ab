package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "volscope/internal/errors"
	"volscope/pkg/contracts/domain"
)

// FileValidator provides the file and row checks shared by the commands
type FileValidator struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		validate: validator.New(),
	}
}

// ValidateDataRoot checks that the dataset root is an existing directory
// and reports how many of the expected entries it holds
func (v *FileValidator) ValidateDataRoot(dir string, expected []string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Warn("Data root does not exist",
			slog.String("directory", dir))
		return apperrors.NewNotFoundError("data root").WithContext("path", dir)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat data root", err).WithContext("path", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Data root is not a directory",
			slog.String("path", dir))
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir))
	}

	found := 0
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found++
		}
	}
	v.logger.Info("Data root validated",
		slog.String("directory", dir),
		slog.Int("entries_found", found),
		slog.Int("entries_expected", len(expected)))
	return nil
}

// ValidateOutputDirectory ensures an output directory exists or can be
// created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("path", dir)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewNotFoundError("file").WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError("file is not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable file with a .csv extension
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return apperrors.NewValidationError(fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext))
	}
	return nil
}

// ValidateWorkbookPath checks a workbook destination: an .xlsx name whose
// directory can be created
func (v *FileValidator) ValidateWorkbookPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		v.logger.Error("Workbook path is not an .xlsx file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewValidationError(fmt.Sprintf("workbook %s must have the .xlsx extension", path))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("workbook %s is a spreadsheet lock file name", path))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateTargets checks every label row against its field constraints
func (v *FileValidator) ValidateTargets(rows []domain.TargetRow) error {
	for i := range rows {
		if err := v.validate.Struct(rows[i]); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("target row %d: %v", i, err)).
				WithContext("stock_id", rows[i].StockID).
				WithContext("time_id", rows[i].TimeID)
		}
	}
	return nil
}
