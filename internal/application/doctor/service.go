// Package doctor runs environment diagnostics for the caretaker install.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	configapp "github.com/opsbay/caretaker/internal/application/config"
	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// Service inspects the host without healing anything: it tells the operator
// whether a heal run would have its collaborators available.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Runtime        ports.ContainerRuntime
	Prober         ports.GatewayProber
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded, format version %s", cfg.ConfigFormatVersion)))

	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	checks = append(checks, stateDirCheck(cfg.Health.StateDir))

	if s.Runtime != nil {
		if err := s.Runtime.Ping(ctx); err != nil {
			checks = append(checks, warn("Container runtime", fmt.Sprintf("unreachable: %v", err)))
		} else {
			state, err := s.Runtime.Status(ctx, cfg.Container.Name)
			if err != nil {
				checks = append(checks, warn("Container runtime", fmt.Sprintf("reachable, but %s query failed: %v", cfg.Container.Name, err)))
			} else {
				checks = append(checks, ok("Container runtime", fmt.Sprintf("reachable, %s is %s", cfg.Container.Name, state)))
			}
		}
	}

	if s.Prober != nil {
		switch status := s.Prober.Probe(ctx); status {
		case http.StatusOK:
			checks = append(checks, ok("Gateway", fmt.Sprintf("%s returned 200", cfg.Gateway.URL)))
		case 0:
			checks = append(checks, warn("Gateway", fmt.Sprintf("%s did not respond", cfg.Gateway.URL)))
		default:
			checks = append(checks, warn("Gateway", fmt.Sprintf("%s returned %d", cfg.Gateway.URL, status)))
		}
	}

	checks = append(checks, toolingCheck())
	checks = append(checks, lockRootCheck(cfg.Locks.Root))

	return domain.HealthReport{Checks: checks}, nil
}

// toolingCheck verifies the shell tools the supervisor adapter relies on.
func toolingCheck() domain.HealthCheck {
	var missing []string
	for _, bin := range []string{"launchctl", "lsof"} {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return warn("Supervisor tooling", fmt.Sprintf("missing from PATH: %s (gateway heal will degrade)", strings.Join(missing, ", ")))
	}
	return ok("Supervisor tooling", "launchctl and lsof available")
}

func stateDirCheck(dir string) domain.HealthCheck {
	if dir == "" {
		return fail("Health state dir", "health.state_dir not configured")
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fail("Health state dir", fmt.Sprintf("not writable: %v", err))
	}
	return ok("Health state dir", dir)
}

func lockRootCheck(root string) domain.HealthCheck {
	if root == "" {
		return warn("Lock root", "locks.root not configured")
	}
	if _, err := os.Stat(root); err != nil {
		return warn("Lock root", fmt.Sprintf("missing at %s (lock sweep will no-op)", root))
	}
	return ok("Lock root", root)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
