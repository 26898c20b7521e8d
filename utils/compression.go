package utils

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// CompressText gzips raw document text for storage. Invoice OCR text is
// highly repetitive, so this keeps stored documents small.
func CompressText(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("failed to write to gzip writer: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressText restores text stored with CompressText.
func DecompressText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decompress text: %w", err)
	}
	return string(out), nil
}
