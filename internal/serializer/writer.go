// Package serializer renders command results as JSON, YAML or an aligned text table.
package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	applog "costbook/internal/log"
)

// Format represents the output format type.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ErrNoTableLayout is returned when a value without a Table implementation is written
// in table format.
var ErrNoTableLayout = errors.New("value has no table layout")

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats lists the accepted format names.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// ParseFormat accepts a format name, ignoring case and surrounding space.
func ParseFormat(value string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(value)))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format %q (supported: %s)", value, strings.Join(SupportedFormats(), ", "))
	}
	return format, nil
}

// Table is implemented by values that render as rows.
type Table interface {
	Header() []string
	Rows() [][]string
}

// Writer serializes values to an output stream. Close must be called when the Writer
// was opened on a file.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer. A nil output writes to stdout; an unknown format falls back
// to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		applog.Warn(context.Background(), "unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewFileWriterOrStdout writes to path, or to stdout when path is empty.
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout), nil
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	w := NewWriter(format, file)
	w.closer = file
	return w, nil
}

// Close releases the output file, if any. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Serialize writes value in the configured format.
func (w *Writer) Serialize(ctx context.Context, value any) error {
	applog.Debug(ctx, "serializing output", "format", w.format)
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.output)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w.output)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		return encoder.Close()
	case FormatTable:
		table, ok := value.(Table)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNoTableLayout, value)
		}
		return w.serializeTable(table)
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

func (w *Writer) serializeTable(table Table) error {
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	header := table.Header()
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, column := range header {
		rule[i] = strings.Repeat("-", len(column))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	rows := table.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>")
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
