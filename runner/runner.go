package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
)

// DefaultCommand and DefaultArgs run the generated suite with output capture disabled.
const DefaultCommand = "pytest"

// DefaultMaxLineBytes bounds a single streamed output line. Longer lines are
// passed through unsplit.
const DefaultMaxLineBytes = 1 << 20

// waitDelay bounds how long Wait blocks on inherited pipes after the process exits.
const waitDelay = 5 * time.Second

var DefaultArgs = []string{"-s"}

// Config configures the downstream test run.
type Config struct {
	Command      string
	Args         []string
	Dir          string
	MaxLineBytes int
}

// Report describes a finished run.
type Report struct {
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// Runner executes the generated test suite in the output directory.
type Runner struct {
	config Config
	out    io.Writer
	logger logger.Logger
}

// New creates a runner. Every output line is also copied to out when it is non-nil.
func New(cfg Config, out io.Writer, log logger.Logger) *Runner {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
		if cfg.Args == nil {
			cfg.Args = DefaultArgs
		}
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Runner{
		config: cfg,
		out:    out,
		logger: log,
	}
}

// Run starts the command and waits for it. Only a failure to start is returned;
// a non-zero exit status is logged and reported in Report.ExitCode.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cmd := exec.CommandContext(ctx, r.config.Command, r.config.Args...)
	cmd.Dir = r.config.Dir
	cmd.WaitDelay = waitDelay

	// exec copies into these writers, so Wait (bounded by WaitDelay) returns
	// even when a grandchild keeps the process pipes open.
	stdout, stdoutW := io.Pipe()
	stderr, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	r.logger.Info(ctx, "starting test run", map[string]interface{}{
		"command": r.config.Command,
		"args":    r.config.Args,
		"dir":     r.config.Dir,
	})

	start := time.Now()
	if err := cmd.Start(); err != nil {
		stdoutW.Close()
		stderrW.Close()
		return nil, fmt.Errorf("failed to start %s: %w", r.config.Command, err)
	}

	sink := &outputSink{out: r.out}
	var wg sync.WaitGroup
	stream := func(name string, rd io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(rd)
		scanner.Buffer(make([]byte, 0, 64*1024), r.config.MaxLineBytes)
		for scanner.Scan() {
			sink.Write([]byte(scanner.Text() + "\n"))
		}
		if err := scanner.Err(); err != nil {
			r.logger.Warn(ctx, "output line too long to split; streaming the rest unsplit", map[string]interface{}{
				"stream": name,
				"error":  err.Error(),
			})
			// The child blocks on a full pipe unless the rest is read.
			io.Copy(sink, rd)
		}
	}

	wg.Add(2)
	go stream("stdout", stdout)
	go stream("stderr", stderr)

	waitErr := cmd.Wait()
	stdoutW.Close()
	stderrW.Close()
	wg.Wait()
	report := &Report{
		Output:   sink.Bytes(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.Is(waitErr, exec.ErrWaitDelay):
		r.logger.Warn(ctx, "test run left output pipes open after exit", nil)
	case errors.As(waitErr, &exitErr):
		report.ExitCode = exitErr.ExitCode()
		r.logger.Warn(ctx, "test run exited with non-zero status", map[string]interface{}{
			"exit_code": report.ExitCode,
		})
	default:
		return report, fmt.Errorf("test run failed: %w", waitErr)
	}

	r.logger.Info(ctx, "test run finished", map[string]interface{}{
		"exit_code":   report.ExitCode,
		"duration_ms": report.Duration.Milliseconds(),
	})
	return report, nil
}

// outputSink collects output from both streams and forwards it to out.
type outputSink struct {
	mu  sync.Mutex
	buf []byte
	out io.Writer
}

func (s *outputSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	if s.out != nil {
		s.out.Write(p)
	}
	return len(p), nil
}

func (s *outputSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}
