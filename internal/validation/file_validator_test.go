package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "volscope/internal/errors"
	"volscope/pkg/contracts/domain"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileValidator_ValidateDataRoot(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "directory with entries",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "train.csv"), []byte("x"), 0644))
				return dir
			},
		},
		{
			name: "empty directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "missing directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "root")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateDataRoot(tt.setupFunc(t), []string{"train.csv", "test.csv"})
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newValidator()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	err := v.ValidateOutputDirectory(filepath.Join(blocker, "charts"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "train.csv")
	txtPath := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(csvPath, []byte("a\n"), 0644))
	require.NoError(t, os.WriteFile(txtPath, []byte("a\n"), 0644))

	v := newValidator()
	assert.NoError(t, v.ValidateCSVFile(csvPath))
	assert.True(t, apperrors.IsType(v.ValidateCSVFile(txtPath), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(v.ValidateCSVFile(filepath.Join(dir, "none.csv")), apperrors.ErrTypeNotFound))
	assert.True(t, apperrors.IsType(v.ValidateFile(dir), apperrors.ErrTypeValidation))
}

func TestFileValidator_ValidateWorkbookPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"xlsx", filepath.Join(dir, "out", "summary.xlsx"), false},
		{"upper case extension", filepath.Join(dir, "summary.XLSX"), false},
		{"csv", filepath.Join(dir, "summary.csv"), true},
		{"lock file", filepath.Join(dir, "~$summary.xlsx"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateWorkbookPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateTargets(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateTargets([]domain.TargetRow{
		{StockID: 1, TimeID: 5, Target: 0.004},
		{StockID: 1, TimeID: 11, Target: 0},
	}))

	err := v.ValidateTargets([]domain.TargetRow{
		{StockID: 1, TimeID: 5, Target: 0.004},
		{StockID: 2, TimeID: 5, Target: -0.1},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "target row 1")

	assert.NoError(t, v.ValidateTargets(nil))
}
