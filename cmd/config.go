package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage riverdata configuration",
	Long:  `Read and write riverdata configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		tmpl := config.Template()
		if err := config.WriteFile(path, tmpl); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  No API key is needed; the NWIS service is open.")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.BaseURL)
		if err != nil {
			return err
		}

		src := "(defaults)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"SETTING", "VALUE"}, func(add func(...string)) {
			add("config file", src)
			add("base_url", cfg.BaseURL)
			add("default_format", cfg.Format)
			add("default_period", cfg.Period)
			add("timeout", cfg.Timeout.String())
			add("rate", fmt.Sprintf("%.1f req/s", cfg.Rate))
			add("db_path", cfg.DBPath)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
}
