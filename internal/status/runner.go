package status

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

var ErrQueueFull = errors.New("status command queue full")

const (
	DefaultWorkers = 4
	DefaultTimeout = 5 * time.Second
)

// Runner executes status commands on a fixed pool of workers.
type Runner struct {
	workers int
	timeout time.Duration
	jobs    chan Job
	results chan Result
}

func NewRunner(workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		workers: workers,
		timeout: timeout,
		jobs:    make(chan Job, workers*4),
		results: make(chan Result, workers*4),
	}
}

func (r *Runner) String() string {
	return "status.Runner"
}

// Serve runs the workers until ctx is done.
func (r *Runner) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// Submit queues job without blocking.
func (r *Runner) Submit(job Job) error {
	select {
	case r.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) Results() <-chan Result {
	return r.results
}

func (r *Runner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.jobs:
			res := r.run(ctx, job)
			select {
			case <-ctx.Done():
				return
			case r.results <- res:
			}
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) Result {
	res := Result{ID: job.ID, Segment: job.Segment}
	if len(job.Argv) == 0 {
		res.Err = errors.New("empty command")
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, job.Argv[0], job.Argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Kill the whole process group so shell pipelines die with their parent.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", r.timeout)
	} else if err != nil && stderr.Len() > 0 {
		err = fmt.Errorf("%w: %s", err, firstLine(stderr.String()))
	}
	res.Output, res.Err = stdout.String(), err

	slog.Debug("Ran status command", "package", "status", "job", job.ID, "argv", job.Argv, "elapsed", time.Since(start), "error", err)
	return res
}
