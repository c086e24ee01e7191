package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ImporterType represents the type of importer
type ImporterType string

const (
	ImporterTypeParquet ImporterType = "parquet"
	ImporterTypeAvro    ImporterType = "avro"
)

// Reader loads a whole file into an Arrow table
type Reader interface {
	Read(ctx context.Context, path string) (arrow.Table, error)
}

// SupportedFormats lists the file extensions that can be imported
func SupportedFormats() []string {
	return []string{".parquet", ".avro"}
}

// DetectFileType detects the file type based on file extension
func DetectFileType(filePath string) (ImporterType, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".parquet":
		return ImporterTypeParquet, nil
	case ".avro":
		return ImporterTypeAvro, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: %s)", ext, strings.Join(SupportedFormats(), ", "))
	}
}

// NewReader creates a reader for the given file type
func NewReader(importerType ImporterType, mem memory.Allocator) (Reader, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	switch importerType {
	case ImporterTypeParquet:
		return &ParquetReader{allocator: mem}, nil
	case ImporterTypeAvro:
		return &AvroReader{allocator: mem}, nil
	default:
		return nil, fmt.Errorf("unsupported importer type: %s", importerType)
	}
}

// ReadRows reads a Parquet or Avro file and conforms its columns to target. The
// caller must Release the returned table.
func ReadRows(ctx context.Context, path string, target *arrow.Schema, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	importerType, err := DetectFileType(path)
	if err != nil {
		return nil, err
	}

	reader, err := NewReader(importerType, mem)
	if err != nil {
		return nil, err
	}

	raw, err := reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer raw.Release()

	conformed, err := Conform(mem, raw, target)
	if err != nil {
		return nil, fmt.Errorf("%s does not match the table schema: %w", filepath.Base(path), err)
	}
	return conformed, nil
}

func localPath(path string) string {
	return strings.TrimPrefix(path, "file://")
}
