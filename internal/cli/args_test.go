package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		if _, err := ParseArgs(nil); err == nil {
			t.Error("expected error for empty args")
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		if _, err := ParseArgs([]string{"explode"}); err == nil {
			t.Error("expected error for unknown command")
		}
	})

	t.Run("upload with existing file", func(t *testing.T) {
		path := tempFile(t)
		cmd, err := ParseArgs([]string{"upload", path})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Name != "upload" || len(cmd.Paths) != 1 {
			t.Errorf("unexpected command: %+v", cmd)
		}
	})

	t.Run("upload with folder flag", func(t *testing.T) {
		path := tempFile(t)
		cmd, err := ParseArgs([]string{"upload", path, "--folder", "folder-7"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.FolderID != "folder-7" {
			t.Errorf("expected folder-7, got %q", cmd.FolderID)
		}
	})

	t.Run("upload with missing file", func(t *testing.T) {
		_, err := ParseArgs([]string{"upload", "/no/such/file"})
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %T", err)
		}
	})

	t.Run("upload rejects directories", func(t *testing.T) {
		if _, err := ParseArgs([]string{"upload", t.TempDir()}); err == nil {
			t.Error("expected error for directory")
		}
	})

	t.Run("upload without files", func(t *testing.T) {
		if _, err := ParseArgs([]string{"upload"}); err == nil {
			t.Error("expected error for no files")
		}
	})

	t.Run("ls", func(t *testing.T) {
		cmd, err := ParseArgs([]string{"ls"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Trashed {
			t.Error("expected active listing by default")
		}
	})

	t.Run("ls trash", func(t *testing.T) {
		cmd, err := ParseArgs([]string{"ls", "--trash"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cmd.Trashed {
			t.Error("expected trash listing")
		}
	})

	t.Run("lifecycle commands need exactly one id", func(t *testing.T) {
		for _, name := range []string{"trash", "restore", "purge"} {
			cmd, err := ParseArgs([]string{name, "file-1"})
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			if cmd.FileID != "file-1" {
				t.Errorf("%s: expected file-1, got %q", name, cmd.FileID)
			}

			if _, err := ParseArgs([]string{name}); err == nil {
				t.Errorf("%s: expected error without id", name)
			}
			if _, err := ParseArgs([]string{name, "a", "b"}); err == nil {
				t.Errorf("%s: expected error with two ids", name)
			}
		}
	})

	t.Run("download with destination", func(t *testing.T) {
		cmd, err := ParseArgs([]string{"download", "file-1", "out.bin"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.FileID != "file-1" || cmd.Dest != "out.bin" {
			t.Errorf("unexpected command: %+v", cmd)
		}
	})

	t.Run("usage takes no arguments", func(t *testing.T) {
		if _, err := ParseArgs([]string{"usage", "extra"}); err == nil {
			t.Error("expected error for extra argument")
		}
	})
}
