package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func TestMain(m *testing.M) {
	logger_i.Init()
	os.Exit(m.Run())
}

func TestDocTypeOf(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"report.pdf", commonModels.PDF},
		{"CONTRACT.DOCX", commonModels.DOCX},
		{"notes.odt", commonModels.DOCX},
		{"legacy.rtf", commonModels.DOCX},
		{"registry.xlsx", commonModels.XLSX},
		{"readme.txt", commonModels.TXT},
		{"image.png", commonModels.ERR},
		{"noextension", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := DocTypeOf(tt.path); got != tt.expected {
			t.Errorf("DocTypeOf(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestText_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	content := "All customer identities must be verified before onboarding."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	text, err := Text(path)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != content {
		t.Errorf("Text got %q, want %q", text, content)
	}
}

func TestText_MissingFile(t *testing.T) {
	if _, err := Text(filepath.Join(t.TempDir(), "ghost.txt")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestText_UnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	os.WriteFile(path, []byte{0x89, 0x50}, 0644)

	_, err := Text(path)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType, got %v", err)
	}
}

func TestText_EmptyContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.txt")
	os.WriteFile(path, []byte("   \n\t "), 0644)

	_, err := Text(path)
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
}
