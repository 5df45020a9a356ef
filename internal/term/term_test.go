package term

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("Expected a regular file not to be a terminal")
	}
	if ColorEnabled(f) {
		t.Error("Expected no colour for a regular file")
	}
}

func TestIsTerminal_Nil(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("Expected nil not to be a terminal")
	}
}

func TestColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(os.Stdout) {
		t.Error("Expected NO_COLOR to disable colour")
	}
}
