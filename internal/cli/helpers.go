package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/output"
)

func ensureOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return os.MkdirAll(path, 0o755)
}

// writeResultFile stores result as JSON at path, creating parent directories.
func writeResultFile(path string, result model.ScanResult) error {
	var buf bytes.Buffer
	if err := output.WriteJSON(&buf, result); err != nil {
		return err
	}
	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
