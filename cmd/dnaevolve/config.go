package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnaevolve/dnaevolve/internal/config"
)

// newConfigCmd builds the `dnaevolve config` subcommand tree: a
// show/get/set shape backed by internal/config rather than calling
// viper directly.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dnaevolve configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.dnaevolve.yaml.",
		Example: `  dnaevolve config                       # show all config
  dnaevolve config set workers 8         # default worker pool size
  dnaevolve config get workers           # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	if _, err := config.Load(); err != nil {
		return err
	}
	out, err := config.Show()
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("# No configuration set. Config file: ~/.dnaevolve.yaml")
		return nil
	}
	fmt.Print(out)
	return nil
}

func runConfigSet(key, value string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	cfgFile, err := config.Set(key, value)
	if err != nil {
		return err
	}
	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if _, err := config.Load(); err != nil {
		return err
	}
	val, err := config.Get(key)
	if err != nil {
		return err
	}
	fmt.Println(val)
	return nil
}
