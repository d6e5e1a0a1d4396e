// Package entrypoint implements the container startup sequence: run the
// database migrations to completion, then replace the current process with
// the real server command.
package entrypoint

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

const defaultMigrateBinary = "/app/migrate"

// Sequencer runs migrations and hands the process off to the server binary.
// The run and exec functions are injectable so the sequencing rules can be
// tested without spawning processes.
type Sequencer struct {
	// LookupEnv resolves environment variables. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
	// RunMigrations runs the migration command and blocks until it exits.
	RunMigrations func(binary string, args ...string) error
	// Exec replaces the current process image. It only returns on failure.
	Exec func(binary string, argv []string, env []string) error
	// Environ snapshots the environment passed through to the server.
	Environ func() []string
}

// NewSequencer returns a Sequencer bound to the real process primitives.
func NewSequencer() *Sequencer {
	return &Sequencer{
		LookupEnv:     os.LookupEnv,
		RunMigrations: runCommand,
		Exec:          syscall.Exec,
		Environ:       os.Environ,
	}
}

// Run executes the startup sequence with the given argument vector, which
// must be the command the container was asked to run (os.Args[1:]).
// Migrations run first and must succeed; the server command is then exec'd
// unmodified, inheriting this process's PID and environment. Run only
// returns on error.
func (s *Sequencer) Run(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("no command to exec: usage: entrypoint <command> [args...]")
	}

	binary := defaultMigrateBinary
	if v, ok := s.LookupEnv("MIGRATE_BINARY"); ok && v != "" {
		binary = v
	}

	if err := s.RunMigrations(binary, "up"); err != nil {
		return fmt.Errorf("migrations failed, refusing to start server: %w", err)
	}

	if err := s.Exec(argv[0], argv, s.Environ()); err != nil {
		return fmt.Errorf("failed to exec %s: %w", argv[0], err)
	}
	return nil
}

// ExitCode extracts the child's exit code from a migration error. Errors
// that are not exit errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func runCommand(binary string, args ...string) error {
	cmd := exec.Command(binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
