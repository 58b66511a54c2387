// Package testutil provides small helpers shared by piper's package tests:
// building temporary record files and throwaway file/directory paths.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// GenerateRecordFile creates a temporary file of numLines space-delimited
// records of the form "id field-a field-b", cycling through a handful of
// fictional values for variety. Returns the file path and a cleanup
// function.
func GenerateRecordFile(t *testing.T, numLines int) (string, func()) {
	t.Helper()

	if numLines < 1 {
		numLines = 1
	}

	tmpFile, err := os.CreateTemp("", "piper_records_*.txt")
	if err != nil {
		t.Fatalf("failed to create temp record file: %v", err)
	}

	sampleFields := [][2]string{
		{"alpha", "100"},
		{"bravo", "200"},
		{"charlie", "300"},
		{"delta", "400"},
		{"echo", "500"},
	}

	var content strings.Builder
	for i := 0; i < numLines; i++ {
		f := sampleFields[i%len(sampleFields)]
		fmt.Fprintf(&content, "%d %s %s\n", i, f[0], f[1])
	}

	if _, err := tmpFile.WriteString(content.String()); err != nil {
		t.Fatalf("failed to write temp record file: %v", err)
	}
	tmpFile.Close()

	cleanup := func() { os.Remove(tmpFile.Name()) }
	return tmpFile.Name(), cleanup
}

// TempFilePath returns a cross-platform temporary file path matching
// pattern without creating the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path)
	return path
}

// TempDirPath returns a fresh temporary directory scoped to t.
func TempDirPath(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}
