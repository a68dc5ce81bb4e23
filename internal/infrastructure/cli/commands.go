package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opsbay/caretaker/internal/app"
	configapp "github.com/opsbay/caretaker/internal/application/config"
	"github.com/opsbay/caretaker/internal/domain"
	configinfra "github.com/opsbay/caretaker/internal/infrastructure/config"
	"github.com/opsbay/caretaker/internal/version"
)

func newHealCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "heal",
		Short: "Run the self-heal battery (container, gateway, disk, locks)",
		Long:  "Runs the four infrastructure checks in fixed order, attempts one bounded repair for each failing check, and records every attempt. Exits non-zero when any check could not be resolved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HealService == nil {
				return fmt.Errorf("heal service unavailable")
			}
			if err := configapp.Validate(container.Config); err != nil {
				return fmt.Errorf("refusing to heal with invalid configuration: %w", err)
			}
			report, err := container.HealService.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !report.Overall() {
				return fmt.Errorf("%d of %d checks unresolved", report.Unresolved(), len(report.Outcomes))
			}
			return nil
		},
	}
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the caretaker environment without healing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.DoctorService == nil {
				return fmt.Errorf("doctor service unavailable")
			}
			report, err := container.DoctorService.Run(cmd.Context())
			renderDoctorReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func renderDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded heal attempts",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent heal attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHealHistory(cmd.OutOrStdout(), container, limit, "")
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")

	var query string
	var searchLimit int
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search heal attempts by issue, action or diagnosis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			return listHealHistory(cmd.OutOrStdout(), container, searchLimit, query)
		},
	}
	searchCmd.Flags().StringVar(&query, "query", "", "Search keyword")
	searchCmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")

	exportCmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export heal history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history unavailable")
			}
			if err := container.History.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported heal history to %s\n", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the queryable history mirror (heal-log.json is untouched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history unavailable")
			}
			return container.History.Clear()
		},
	}

	historyCmd.AddCommand(listCmd, searchCmd, exportCmd, clearCmd)
	return historyCmd
}

func listHealHistory(out io.Writer, container *app.Container, limit int, search string) error {
	if container.History == nil {
		return fmt.Errorf("history unavailable")
	}
	entries, err := container.History.Records(limit, search)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No heal attempts recorded yet.")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintln(out, entry.HistoryLine())
	}
	return nil
}

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect caretaker configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	var key string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get a specific configuration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return fmt.Errorf("--key is required")
			}
			return runConfigGet(cmd.Context(), cmd.OutOrStdout(), container, key)
		},
	}
	getCmd.Flags().StringVar(&key, "key", "", "Key path (e.g., disk.trigger_percent)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show diff versus default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigDiff(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(showCmd, getCmd, validateCmd, diffCmd)
	return configCmd
}

func runConfigShow(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigGet(ctx context.Context, out io.Writer, container *app.Container, keyPath string) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to convert config: %w", err)
	}

	value, found := traverseNestedMap(generic, strings.Split(keyPath, "."))
	if !found {
		return fmt.Errorf("key %s not found in configuration", keyPath)
	}

	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigDiff(ctx context.Context, out io.Writer, container *app.Container) error {
	current, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current configuration: %w", err)
	}

	diff := cmp.Diff(configinfra.DefaultConfig(), current)
	if diff == "" {
		fmt.Fprintln(out, "No differences from default configuration.")
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}

// traverseNestedMap walks a generic JSON structure along a key path.
func traverseNestedMap(node interface{}, keys []string) (interface{}, bool) {
	current := node
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show caretaker version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "caretaker version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
