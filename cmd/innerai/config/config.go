// Package configcmder provides the config command for managing persistent
// innerai configuration stored in the .innerai/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/config"
)

const configLongDesc string = `Manage persistent innerai configuration.

Configuration is stored as config.toml in the .innerai/ directory and provides
default values for command flags. CLI flags and INNERAI_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  gateway.listen, gateway.provider, gateway.upstream, gateway.model,
  gateway.timeout, gateway.rate_limit, gateway.cors_origins,
  persona.name, persona.language,
  api.listen, client.gateway_target,
  storage.sqlite_path, storage.postgres_dsn,
  eventstream.kafka_brokers, eventstream.kafka_topic

Use subcommands to get, set, or list configuration values:
  innerai config set <key> <value>    Set a configuration value
  innerai config get <key>            Get a configuration value
  innerai config list                 List all configuration values

Examples:
  innerai config set persona.language ko
  innerai config set gateway.model gemini-1.5-flash
  innerai config get gateway.upstream
  innerai config list`

const configShortDesc string = "Manage persistent innerai configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(out io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
