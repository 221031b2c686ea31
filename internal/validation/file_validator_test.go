package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateDatasetFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "csv dataset",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "dataset_clean.csv")
				require.NoError(t, os.WriteFile(path, []byte("dteday\n"), 0644))
				return path
			},
			wantErr: false,
		},
		{
			name: "upper-case xlsx extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "DATASET.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
				return path
			},
			wantErr: false,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "dataset.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "is not a dataset",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$dataset.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			path := tt.setupFunc(t)

			err := validator.ValidateDatasetFile(path)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateFile_WrapsNotExist(t *testing.T) {
	err := NewFileValidator(nil).ValidateFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   bool
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: false,
		},
		{
			name: "non-existent directory (should be created)",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "reports", "2011")
			},
			wantErr: false,
		},
		{
			name: "path collides with a file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "reports")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			dir := tt.setupFunc(t)

			err := validator.ValidateOutputDirectory(dir)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())

			_, err = os.Stat(filepath.Join(dir, ".write_test"))
			assert.True(t, os.IsNotExist(err), "probe file should be removed")
		})
	}
}
