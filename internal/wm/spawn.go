package wm

import (
	"log/slog"
	"os/exec"
	"syscall"

	"github.com/google/uuid"
)

// Spawn starts argv in its own session without a shell and reaps it in the
// background.
func Spawn(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}

	id := uuid.New()
	log := slog.With("package", "wm", "spawn", id)
	log.Debug("Spawned", "argv", argv, "pid", cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("Spawned process exited", "error", err)
		}
	}()
	return nil
}
