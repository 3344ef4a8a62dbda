// Package export writes report rows as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes data to a file in the configured format.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes data to the configured file. CSV needs a slice of structs;
// columns come from `csv` tags.
func (e *Exporter) Export(data any) (err error) {
	if e.opts.Format != FormatCSV && e.opts.Format != FormatJSON {
		return fmt.Errorf("unsupported export format: %s", e.opts.Format)
	}

	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteTo(file, e.opts.Format, data, e.opts.PrettyJSON)
}

// createFile creates the output file, handling overwrite settings.
func (e *Exporter) createFile() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(e.opts.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// WriteTo writes data to w in the given format.
func WriteTo(w io.Writer, format Format, data any, prettyJSON bool) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		if prettyJSON {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, data)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

func writeCSV(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("CSV export requires a slice, got %s", v.Kind())
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("CSV export requires a slice of structs")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders(elemType)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if err := writer.Write(csvRow(elem)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// csvHeaders uses the csv tag of each exported field, or its name.
func csvHeaders(t reflect.Type) []string {
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("csv")
		if !field.IsExported() || tag == "-" {
			continue
		}
		if tag == "" {
			tag = field.Name
		}
		headers = append(headers, tag)
	}
	return headers
}

func csvRow(v reflect.Value) []string {
	var row []string
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("csv") == "-" {
			continue
		}
		row = append(row, valueToString(v.Field(i)))
	}
	return row
}

// valueToString formats a field for CSV. Nil pointers are empty and floats
// keep two decimals.
func valueToString(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return t.Format("2006-01-02")
		}
		return fmt.Sprintf("%v", v.Interface())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// GenerateFilename builds "<kind>_<timestamp>.<format>".
func GenerateFilename(kind string, format Format) string {
	return fmt.Sprintf("%s_%s.%s", kind, time.Now().Format("20060102_150405"), format)
}
