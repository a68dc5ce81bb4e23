package heal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// statusUnreachable is the sentinel the prober returns when no connection
// could be made at all.
const statusUnreachable = 0

// GatewayChecker ensures the local HTTP gateway answers 200 on its health
// endpoint, restarting it through the process supervisor when it does not.
type GatewayChecker struct {
	Prober     ports.GatewayProber
	Supervisor ports.ProcessSupervisor
	Reporter   ports.Reporter

	Port  int
	Label string
	// RestartSettle is the wait after kickstart, KillSettle the shorter wait
	// after terminating a wedged process.
	RestartSettle time.Duration
	KillSettle    time.Duration
}

// Name implements Checker.
func (g *GatewayChecker) Name() string { return "gateway" }

// Run probes the health endpoint and attempts one restart cycle. When a
// process holds the port but the endpoint is unhealthy, that process is
// terminated before the supervisor restart.
func (g *GatewayChecker) Run(ctx context.Context) domain.CheckOutcome {
	g.Reporter.Check("gateway health endpoint")
	status := g.Prober.Probe(ctx)
	if status == http.StatusOK {
		g.Reporter.OK("gateway healthy (200)")
		return pass(g.Name())
	}

	started := time.Now()
	pid, err := g.Supervisor.PIDOnPort(ctx, g.Port)
	if err != nil {
		// A failed port query is indistinguishable from an unbound port for
		// remediation purposes: kickstart either way.
		pid = 0
	}

	if pid == 0 {
		g.Reporter.Warn("gateway %s and no process owns port %d", describeStatus(status), g.Port)
		g.Reporter.Heal("kickstarting %s", g.Label)
		kickErr := g.Supervisor.Kickstart(ctx, g.Label)
		g.Reporter.Wait(ctx, g.RestartSettle, "waiting %s for gateway to settle", g.RestartSettle)

		return g.verify(ctx, started,
			"gateway_down",
			fmt.Sprintf("health endpoint %s with no process bound to port %d", describeStatus(status), g.Port),
			fmt.Sprintf("kickstart %s", g.Label),
			kickErr,
		)
	}

	g.Reporter.Warn("gateway %s while pid %d holds port %d", describeStatus(status), pid, g.Port)
	g.Reporter.Heal("terminating pid %d", pid)
	if err := g.Supervisor.Terminate(ctx, pid); err != nil {
		g.Reporter.Warn("terminate pid %d: %v", pid, err)
	}
	g.Reporter.Wait(ctx, g.KillSettle, "waiting %s after terminating pid %d", g.KillSettle, pid)
	g.Reporter.Heal("kickstarting %s", g.Label)
	kickErr := g.Supervisor.Kickstart(ctx, g.Label)
	g.Reporter.Wait(ctx, g.RestartSettle, "waiting %s for gateway to settle", g.RestartSettle)

	return g.verify(ctx, started,
		"gateway_unhealthy",
		fmt.Sprintf("health endpoint %s while pid %d held port %d; terminated it before restart", describeStatus(status), pid, g.Port),
		fmt.Sprintf("terminate pid %d, then kickstart %s", pid, g.Label),
		kickErr,
	)
}

// verify re-probes after the restart cycle and builds the single log entry.
func (g *GatewayChecker) verify(ctx context.Context, started time.Time, issue, diagnosis, action string, kickErr error) domain.CheckOutcome {
	after := g.Prober.Probe(ctx)
	if after == http.StatusOK {
		g.Reporter.OK("gateway healthy after restart")
		return outcome(g.Name(), true, newEntry(started,
			issue, diagnosis, action, domain.HealSuccess,
			"health endpoint returned 200 after restart",
		))
	}

	g.Reporter.Fail("gateway still %s after restart", describeStatus(after))
	if kickErr != nil {
		diagnosis = fmt.Sprintf("%s; kickstart failed: %v", diagnosis, kickErr)
	}
	return outcome(g.Name(), false, newEntry(started,
		issue, diagnosis, action, domain.HealFailed,
		fmt.Sprintf("health endpoint %s after restart", describeStatus(after)),
	))
}

func describeStatus(status int) string {
	if status == statusUnreachable {
		return "did not respond"
	}
	return fmt.Sprintf("returned %d", status)
}
