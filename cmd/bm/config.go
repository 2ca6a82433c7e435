package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/config"
	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

var configInitTOML bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitTOML, "toml", false, "Write bibliometer.toml instead of bibliometer.yml")
	configCmd.AddCommand(configInitCmd, configShowCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, show or check the workspace configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and its input files",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// CheckResponse is the response for config check.
type CheckResponse struct {
	Status        string   `json:"status"`
	RegistryYears []string `json:"registry_years"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = config.ExpandPath(args[0])
	}
	name := config.FileNames[0]
	if configInitTOML {
		name = "bibliometer.toml"
	}
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err == nil {
		exitWithError(ExitConfigError, "%s already exists", path)
	}
	if err := config.Defaults().Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Wrote %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if humanOutput {
		fmt.Printf("institute:       %s\n", cfg.Institute.Name)
		if inst := cfg.Institute.MainInstitution(); inst != "" {
			fmt.Printf("main institution: %s\n", inst)
		}
		fmt.Printf("depth:           %d\n", cfg.Search.Depth)
		fmt.Printf("workers:         %d\n", cfg.Search.Workers)
		fmt.Printf("registry:        %s\n", cfg.Inputs.RegistryDir)
		fmt.Printf("authors:         %s\n", cfg.Inputs.Authors)
		fmt.Printf("publications:    %s\n", cfg.Inputs.Publications)
		fmt.Printf("output:          %s\n", cfg.Output.Dir)
		fmt.Printf("database:        %s\n", cfg.Output.Database)
		return nil
	}
	return outputJSON(cfg)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if err := cfg.ValidateInputs(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	years, err := storage.RegistryYears(cfg.Inputs.RegistryDir)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if len(years) == 0 {
		exitWithError(ExitNoRegistry, "no <YYYY>.csv files in %s", cfg.Inputs.RegistryDir)
	}
	if len(years) < cfg.Search.Depth {
		fmt.Fprintf(os.Stderr, "warning: %d registry years for a search depth of %d\n", len(years), cfg.Search.Depth)
	}

	if humanOutput {
		fmt.Printf("ok: registry years %v\n", years)
		return nil
	}
	return outputJSON(CheckResponse{Status: "ok", RegistryYears: years})
}
