package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set auth_token and api_key (or export CLIPFLOW_SOURCE_TOKEN and CLIPFLOW_LLM_API_KEY) before running Clipflow.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Download dir", statusInfo, cfg.Paths.DownloadDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Data dir", statusInfo, cfg.Paths.DataDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Log dir", statusInfo, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Watchlist", statusInfo, cfg.Paths.WatchlistPath, colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Pipeline", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Clip window", statusInfo, fmt.Sprintf("%d days", cfg.Source.WindowDays), colorize))
			fmt.Fprintln(out, renderStatusLine("Download limit", statusInfo, fmt.Sprintf("%d clips", cfg.Download.Limit), colorize))
			fmt.Fprintln(out, renderStatusLine("Analysis model", statusInfo, cfg.Analysis.Model, colorize))
			fmt.Fprintln(out, renderStatusLine("Enrichment", statusInfo, yesNo(cfg.Analysis.EnrichmentEnabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Min viral score", statusInfo, formatScore(cfg.Quality.MinViralScore), colorize))
			fmt.Fprintln(out, renderStatusLine("Retention", statusInfo, fmt.Sprintf("%d days", cfg.Workflow.RetentionDays), colorize))
			fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, yesNo(strings.TrimSpace(cfg.Notifications.WebhookURL) != ""), colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Rate Limit Pools", colorize) {
				fmt.Fprintln(out, line)
			}
			names := make([]string, 0, len(cfg.RateLimit.Pools))
			for name := range cfg.RateLimit.Pools {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				pool := cfg.RateLimit.Pools[name]
				fmt.Fprintln(out, renderStatusLine(name, statusInfo,
					fmt.Sprintf("%d permits / %ds", pool.Permits, pool.IntervalSeconds), colorize))
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
