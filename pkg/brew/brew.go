// Package brew invokes the Homebrew CLI and parses its output into domain
// entities. It implements the provider interfaces consumed by pkg/tasks.
package brew

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes one external command and returns its stdout and
// stderr. It exists so tests can substitute canned output for the real
// brew binary.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Option configures a Brew provider.
type Option func(*Brew)

// WithBrewPath overrides the brew executable path.
func WithBrewPath(path string) Option {
	return func(b *Brew) { b.brewPath = path }
}

// WithRunner substitutes the command runner (used in tests).
func WithRunner(run CommandRunner) Option {
	return func(b *Brew) { b.run = run }
}

// Brew is the Homebrew-backed package and service provider.
type Brew struct {
	brewPath string
	run      CommandRunner
}

// New returns a provider that shells out to `brew`.
func New(opts ...Option) *Brew {
	b := &Brew{
		brewPath: "brew",
		run:      execRunner,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Available reports whether the brew executable can be found.
func (b *Brew) Available() bool {
	if strings.ContainsRune(b.brewPath, '/') {
		return true
	}
	_, err := exec.LookPath(b.brewPath)
	return err == nil
}

// brewOutput runs one brew invocation and returns its stdout. A non-zero
// exit surfaces the captured stderr in the error so the failure message
// reaching the UI is brew's own.
func (b *Brew) brewOutput(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := b.run(ctx, b.brewPath, args...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("brew %s: %s", strings.Join(args, " "), msg)
	}
	return stdout, nil
}

// brewRun runs one brew invocation for its side effect, discarding stdout.
func (b *Brew) brewRun(ctx context.Context, args ...string) error {
	_, err := b.brewOutput(ctx, args...)
	return err
}
