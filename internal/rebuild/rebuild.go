// Package rebuild checks the user configuration and produces the binary a
// restart should execute.
package rebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ItsNotGoodName/xtile/internal/config"
	"github.com/ItsNotGoodName/xtile/internal/core"
)

type Outcome int

const (
	Success Outcome = iota
	CompileError
	NoConfigFound
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case CompileError:
		return "compile error"
	case NoConfigFound:
		return "no config found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome Outcome
	// Binary is the executable to restart into on Success.
	Binary string
	// Message describes a CompileError.
	Message string
}

// DefaultSourceDir is where packaged source trees are installed.
const DefaultSourceDir = "/usr/share/xtile/src"

type Recompiler struct {
	ConfigPath string
	// SourceDir is the module to rebuild. When empty, XTILE_SOURCE and then
	// DefaultSourceDir are tried. Without a source tree the running
	// executable is restarted as is.
	SourceDir string
	// Output is where a rebuilt binary is written. Defaults to
	// $XDG_CACHE_HOME/xtile/xtile.
	Output string
}

func (r Recompiler) Rebuild(ctx context.Context) Result {
	log := slog.With("package", "rebuild")

	driver := config.NewDriver(r.ConfigPath)
	if _, err := config.Load(driver); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return Result{Outcome: NoConfigFound}
		}
		return Result{Outcome: CompileError, Message: err.Error()}
	}

	src, err := r.sourceDir()
	if err != nil {
		return Result{Outcome: CompileError, Message: err.Error()}
	}
	if src == "" {
		exe, err := os.Executable()
		if err != nil {
			return Result{Outcome: CompileError, Message: err.Error()}
		}
		log.Info("No source tree, restarting current executable", "binary", exe)
		return Result{Outcome: Success, Binary: exe}
	}

	out, err := r.output()
	if err != nil {
		return Result{Outcome: CompileError, Message: err.Error()}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Result{Outcome: CompileError, Message: err.Error()}
	}

	log.Info("Building", "source", src, "output", out)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "build", "-o", out, "./cmd/xtile")
	cmd.Dir = src
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Result{Outcome: CompileError, Message: msg}
	}

	return Result{Outcome: Success, Binary: out}
}

func (r Recompiler) sourceDir() (string, error) {
	candidates := []string{r.SourceDir}
	if r.SourceDir == "" {
		candidates = []string{os.Getenv("XTILE_SOURCE"), DefaultSourceDir}
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		ok, err := core.FileExists(filepath.Join(dir, "go.mod"))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
		if r.SourceDir != "" {
			return "", fmt.Errorf("%s is not a Go module", dir)
		}
	}
	return "", nil
}

func (r Recompiler) output() (string, error) {
	if r.Output != "" {
		return r.Output, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "xtile", "xtile"), nil
}

// Notify shows a critical desktop notification with the first lines of body.
func Notify(ctx context.Context, summary, body string) error {
	lines := strings.Split(body, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	return exec.CommandContext(ctx, "notify-send", "-u", "critical", "-t", "10000", summary, strings.Join(lines, "\n")).Run()
}
