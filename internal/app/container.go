package app

import (
	"context"
	"time"

	"github.com/opsbay/caretaker/internal/application/doctor"
	"github.com/opsbay/caretaker/internal/application/heal"
	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/infrastructure/config"
	"github.com/opsbay/caretaker/internal/infrastructure/diskops"
	"github.com/opsbay/caretaker/internal/infrastructure/heallog"
	"github.com/opsbay/caretaker/internal/infrastructure/locks"
	"github.com/opsbay/caretaker/internal/infrastructure/probe"
	containerruntime "github.com/opsbay/caretaker/internal/infrastructure/runtime"
	"github.com/opsbay/caretaker/internal/infrastructure/supervisor"
	"github.com/opsbay/caretaker/internal/pkg/logger"
	"github.com/opsbay/caretaker/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	HealService    *heal.Service
	DoctorService  *doctor.Service
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Store          ports.HealLogStore
	History        ports.HealHistoryRepository
}

// BuildContainer constructs the dependency graph. The reporter is passed in
// by the CLI layer, which owns the terminal.
func BuildContainer(ctx context.Context, verbose bool, reporter ports.Reporter) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	commandTimeout := time.Duration(cfg.Container.CommandTimeoutSeconds) * time.Second

	runtime := containerruntime.NewDockerCLI(commandTimeout, log)
	launchd := supervisor.NewLaunchd(commandTimeout, log)
	prober := probe.NewHTTPProber(cfg.Gateway.URL,
		time.Duration(cfg.Gateway.ProbeTimeoutSeconds)*time.Second, log)
	disk := diskops.NewManager(cfg.Disk.Root, cfg.Disk.LogDir, cfg.Disk.SessionDir, log)
	scanner := locks.NewScanner(cfg.Locks.Suffix)

	store := heallog.NewFileStore(cfg.Health.StateDir)
	history := heallog.NewSQLiteStore(cfg.Health.StateDir)

	healService := &heal.Service{
		Checkers: []heal.Checker{
			&heal.ContainerChecker{
				Runtime:   runtime,
				Reporter:  reporter,
				Service:   cfg.Container.Service,
				Container: cfg.Container.Name,
				Settle:    time.Duration(cfg.Container.RestartSettleSeconds) * time.Second,
			},
			&heal.GatewayChecker{
				Prober:        prober,
				Supervisor:    launchd,
				Reporter:      reporter,
				Port:          cfg.Gateway.Port,
				Label:         cfg.Gateway.Label,
				RestartSettle: time.Duration(cfg.Gateway.RestartSettleSeconds) * time.Second,
				KillSettle:    time.Duration(cfg.Gateway.KillSettleSeconds) * time.Second,
			},
			&heal.DiskChecker{
				Disk:            disk,
				Runtime:         runtime,
				Reporter:        reporter,
				TriggerPercent:  cfg.Disk.TriggerPercent,
				RecoveryPercent: cfg.Disk.RecoveryPercent,
				SessionMaxAge:   time.Duration(cfg.Disk.SessionMaxAgeDays) * 24 * time.Hour,
			},
			&heal.LockChecker{
				Scanner:    scanner,
				Supervisor: launchd,
				Reporter:   reporter,
				Root:       cfg.Locks.Root,
				MaxAge:     time.Duration(cfg.Locks.MaxAgeMinutes) * time.Minute,
			},
		},
		Store:    store,
		History:  history,
		Reporter: reporter,
		Logger:   log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Runtime:        runtime,
		Prober:         prober,
	}

	return &Container{
		Config:         cfg,
		HealService:    healService,
		DoctorService:  doctorService,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Store:          store,
		History:        history,
	}, nil
}
