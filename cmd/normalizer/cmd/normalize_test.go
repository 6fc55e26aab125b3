package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "logs.txt")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/logs.txt",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "test file")

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateNormalizeFlags(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "logs.txt")
	if err := os.WriteFile(logFile, []byte("2023-05-14 14:05:31::user123::top-up::500::A::B"), 0644); err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}

	validDefaults := func() {
		viper.Set("input", logFile)
		viper.Set("report-format", "console")
		viper.Set("delimiter", ",")
		viper.Set("workers", 0)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid flags",
			setupFlags:  validDefaults,
			expectError: false,
		},
		{
			name: "missing input",
			setupFlags: func() {
				validDefaults()
				viper.Set("input", "")
			},
			expectError:   true,
			errorContains: "input is required",
		},
		{
			name: "non-existent input",
			setupFlags: func() {
				validDefaults()
				viper.Set("input", filepath.Join(tmpDir, "missing.txt"))
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "invalid report format",
			setupFlags: func() {
				validDefaults()
				viper.Set("report-format", "xml")
			},
			expectError:   true,
			errorContains: "invalid report format",
		},
		{
			name: "multi-character delimiter",
			setupFlags: func() {
				validDefaults()
				viper.Set("delimiter", ";;")
			},
			expectError:   true,
			errorContains: "delimiter must be a single character",
		},
		{
			name: "negative workers",
			setupFlags: func() {
				validDefaults()
				viper.Set("workers", -2)
			},
			expectError:   true,
			errorContains: "workers cannot be negative",
		},
		{
			name: "output directory missing",
			setupFlags: func() {
				validDefaults()
				viper.Set("output", filepath.Join(tmpDir, "nope", "out.csv"))
			},
			expectError:   true,
			errorContains: "output directory does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setupFlags()

			cmd := &cobra.Command{}
			err := validateNormalizeFlags(cmd, []string{})

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain '%s', got: %v", tt.errorContains, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNormalizeCommandHelp(t *testing.T) {
	cmd := normalizeCmd

	for _, flagName := range []string{"input", "output", "report-format", "report-file", "workers", "progress", "delimiter"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("%s flag not found", flagName)
		}
	}

	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	cmd.Help()

	helpText := helpOutput.String()
	expectedSections := []string{
		"Usage:",
		"Examples:",
		"Flags:",
		"--input",
		"--output",
		"--report-format",
	}
	for _, section := range expectedSections {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}

func TestReportFormatValidation(t *testing.T) {
	validFormatsMap := map[string]bool{"console": true, "json": true, "csv": true}

	for _, format := range []string{"console", "json", "csv"} {
		if !validFormatsMap[format] {
			t.Errorf("format '%s' should be valid", format)
		}
	}
	for _, format := range []string{"xml", "yaml", "invalid", ""} {
		if validFormatsMap[format] {
			t.Errorf("format '%s' should be invalid", format)
		}
	}
}
