package rebuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ItsNotGoodName/xtile/internal/config"
)

func TestRebuild_NoConfig(t *testing.T) {
	r := Recompiler{ConfigPath: filepath.Join(t.TempDir(), "config.yaml")}
	if res := r.Rebuild(context.Background()); res.Outcome != NoConfigFound {
		t.Errorf("expected %s, got %s", NoConfigFound, res.Outcome)
	}
}

func TestRebuild_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("layout:\n  master_fraction: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	res := Recompiler{ConfigPath: path}.Rebuild(context.Background())
	if res.Outcome != CompileError {
		t.Fatalf("expected %s, got %s", CompileError, res.Outcome)
	}
	if !strings.Contains(res.Message, "master_fraction") {
		t.Errorf("expected message to mention master_fraction, got %q", res.Message)
	}
}

func TestRebuild_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tags: [1, 2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if res := (Recompiler{ConfigPath: path}).Rebuild(context.Background()); res.Outcome != CompileError {
		t.Errorf("expected %s, got %s", CompileError, res.Outcome)
	}
}

func TestRebuild_ExecutableWithoutSource(t *testing.T) {
	t.Setenv("XTILE_SOURCE", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.NewYAML(path).Write(config.Default()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(DefaultSourceDir); err == nil {
		t.Skip("packaged source tree present")
	}

	res := Recompiler{ConfigPath: path}.Rebuild(context.Background())
	if res.Outcome != Success {
		t.Fatalf("expected %s, got %s: %s", Success, res.Outcome, res.Message)
	}
	exe, _ := os.Executable()
	if res.Binary != exe {
		t.Errorf("expected %s, got %s", exe, res.Binary)
	}
}

func TestRebuild_BadSourceDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.NewYAML(path).Write(config.Default()); err != nil {
		t.Fatal(err)
	}
	res := Recompiler{ConfigPath: path, SourceDir: t.TempDir()}.Rebuild(context.Background())
	if res.Outcome != CompileError || !strings.Contains(res.Message, "not a Go module") {
		t.Errorf("expected compile error for missing go.mod, got %s: %s", res.Outcome, res.Message)
	}
}
