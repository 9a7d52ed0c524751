package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// JSONWriter emits the extraction envelope as indented JSON, the same
// document the HTTP API returns.
type JSONWriter struct{}

// WriteToFile writes the result as JSON to the given path.
func (w *JSONWriter) WriteToFile(path string, res *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write writes the result as JSON to the given writer.
func (w *JSONWriter) Write(out io.Writer, res *models.ExtractionResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
