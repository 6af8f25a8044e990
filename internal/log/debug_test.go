package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetWriter(t *testing.T) {
	t.Helper()

	writer.mu.Lock()
	prevFile := writer.file
	prevBuffer := append([]byte(nil), writer.buffer...)
	prevDiscard := writer.discard
	writer.file = nil
	writer.buffer = nil
	writer.discard = false
	writer.mu.Unlock()

	t.Cleanup(func() {
		writer.mu.Lock()
		if writer.file != nil {
			_ = writer.file.Close()
		}
		writer.file = prevFile
		writer.buffer = prevBuffer
		writer.discard = prevDiscard
		writer.mu.Unlock()
	})
}

func TestBufferFlushedToFile(t *testing.T) {
	resetWriter(t)

	Printf("before file %d", 42)

	logPath := filepath.Join(t.TempDir(), "debug.log")
	if err := SetFile(logPath); err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	Println("after file")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logPath) //nolint:gosec
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "before file 42") {
		t.Errorf("buffered message missing from log: %q", out)
	}
	if !strings.Contains(out, "after file") {
		t.Errorf("post-SetFile message missing from log: %q", out)
	}
}

func TestEmptyPathDiscards(t *testing.T) {
	resetWriter(t)

	Println("buffered")
	if err := SetFile(""); err != nil {
		t.Fatalf("SetFile(\"\"): %v", err)
	}
	Println("dropped")

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if !writer.discard {
		t.Error("expected discard mode after SetFile(\"\")")
	}
	if len(writer.buffer) != 0 {
		t.Error("expected buffer to be dropped")
	}
}

func TestSetFileFailureDiscards(t *testing.T) {
	resetWriter(t)

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil { //nolint:gosec
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) }) //nolint:gosec

	if err := SetFile(filepath.Join(dir, "debug.log")); err == nil {
		t.Skip("running as a user unaffected by directory permissions")
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if !writer.discard {
		t.Error("expected discard mode after SetFile failure")
	}
}
