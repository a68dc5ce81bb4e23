// Package runtime adapts the Docker CLI to the ContainerRuntime port.
package runtime

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// DockerCLI shells out to the docker binary. Every call carries its own
// timeout so a hung daemon cannot stall the whole heal run.
type DockerCLI struct {
	bin     string
	timeout time.Duration
	logger  ports.Logger
}

// NewDockerCLI builds the adapter. A zero timeout falls back to the default.
func NewDockerCLI(timeout time.Duration, log ports.Logger) *DockerCLI {
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	return &DockerCLI{bin: "docker", timeout: timeout, logger: log}
}

// Ping implements ports.ContainerRuntime.
func (d *DockerCLI) Ping(ctx context.Context) error {
	_, _, err := d.run(ctx, "info", "--format", "{{.ServerVersion}}")
	return err
}

// Status implements ports.ContainerRuntime. A container unknown to the
// daemon maps to ContainerMissing rather than an error.
func (d *DockerCLI) Status(ctx context.Context, name string) (domain.ContainerState, error) {
	stdout, stderr, err := d.run(ctx, "inspect", "-f", "{{.State.Status}}", name)
	if err != nil {
		if strings.Contains(stderr, "No such object") || strings.Contains(stderr, "No such container") {
			return domain.ContainerMissing, nil
		}
		return domain.ContainerUnknown, err
	}
	return domain.ParseContainerState(strings.TrimSpace(stdout)), nil
}

// Start implements ports.ContainerRuntime.
func (d *DockerCLI) Start(ctx context.Context, name string) error {
	_, _, err := d.run(ctx, "start", name)
	return err
}

// Prune implements ports.ContainerRuntime.
func (d *DockerCLI) Prune(ctx context.Context) error {
	_, _, err := d.run(ctx, "system", "prune", "-f")
	return err
}

func (d *DockerCLI) run(ctx context.Context, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.bin, args...)
	// The context kill only reaches the direct child; WaitDelay bounds the
	// pipe wait when a descendant it forked is still holding stdout/stderr.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	d.logger.Debug("docker command", map[string]interface{}{
		"args":        args,
		"duration_ms": time.Since(start).Milliseconds(),
		"ok":          err == nil,
	})
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), stderr.String(), fmt.Errorf("docker %s: %w", args[0], err)
		}
		return stdout.String(), stderr.String(), fmt.Errorf("docker %s: %s", args[0], msg)
	}
	return stdout.String(), stderr.String(), nil
}

var _ ports.ContainerRuntime = (*DockerCLI)(nil)
