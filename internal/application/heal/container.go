package heal

import (
	"context"
	"fmt"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// ContainerChecker ensures the graph-database container is running.
type ContainerChecker struct {
	Runtime  ports.ContainerRuntime
	Reporter ports.Reporter

	// Service is the issue-tag prefix, Container the container name.
	Service   string
	Container string
	// Settle is the fixed wait after a restart before re-querying state.
	Settle time.Duration
}

// Name implements Checker.
func (c *ContainerChecker) Name() string { return "container" }

// Run checks the container state and attempts exactly one restart when it is
// stopped. An unreachable runtime is logged as a skip, not a failure, since
// the runtime may simply not be started yet. A container that does not exist
// at all is escalated rather than auto-remediated: the checker cannot know
// whether a human removed it deliberately.
func (c *ContainerChecker) Run(ctx context.Context) domain.CheckOutcome {
	c.Reporter.Check("container %s state", c.Container)
	started := time.Now()

	if err := c.Runtime.Ping(ctx); err != nil {
		c.Reporter.Warn("container runtime unreachable, skipping: %v", err)
		return outcome(c.Name(), true, newEntry(started,
			c.Service+"_unreachable",
			fmt.Sprintf("container runtime not reachable: %v", err),
			"none",
			domain.HealSkipped,
			"runtime availability is outside this check's scope",
		))
	}

	state, err := c.Runtime.Status(ctx, c.Container)
	if err != nil {
		c.Reporter.Fail("container %s state query failed: %v", c.Container, err)
		return outcome(c.Name(), false, newEntry(started,
			c.Service+"_down",
			fmt.Sprintf("state query for container %s failed: %v", c.Container, err),
			"none",
			domain.HealFailed,
			"not verified; state unknown",
		))
	}

	switch state {
	case domain.ContainerRunning:
		c.Reporter.OK("container %s is running", c.Container)
		return pass(c.Name())

	case domain.ContainerMissing:
		c.Reporter.Warn("container %s does not exist; escalating, not auto-creating", c.Container)
		return outcome(c.Name(), true, newEntry(started,
			c.Service+"_missing",
			"container does not exist",
			"none",
			domain.HealEscalate,
			"absence may be intentional; left for a human to decide",
		))
	}

	c.Reporter.Warn("container %s is %s", c.Container, state)
	c.Reporter.Heal("starting container %s", c.Container)
	action := fmt.Sprintf("start container %s", c.Container)
	startErr := c.Runtime.Start(ctx, c.Container)
	c.Reporter.Wait(ctx, c.Settle, "waiting %s for %s to settle", c.Settle, c.Container)

	after, err := c.Runtime.Status(ctx, c.Container)
	if startErr == nil && err == nil && after == domain.ContainerRunning {
		c.Reporter.OK("container %s is running after restart", c.Container)
		return outcome(c.Name(), true, newEntry(started,
			c.Service+"_down",
			fmt.Sprintf("container was %s", state),
			action,
			domain.HealSuccess,
			fmt.Sprintf("state is running after %s settle", c.Settle),
		))
	}

	c.Reporter.Fail("container %s did not come back (state %s)", c.Container, after)
	diagnosis := fmt.Sprintf("container was %s", state)
	if startErr != nil {
		diagnosis = fmt.Sprintf("container was %s; start command failed: %v", state, startErr)
	}
	return outcome(c.Name(), false, newEntry(started,
		c.Service+"_down",
		diagnosis,
		action,
		domain.HealFailed,
		fmt.Sprintf("state is %s after %s settle", after, c.Settle),
	))
}
