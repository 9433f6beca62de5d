// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/innerai/api"
	apicmder "github.com/papercomputeco/innerai/cmd/innerai/serve/api"
	gatewaycmder "github.com/papercomputeco/innerai/cmd/innerai/serve/gateway"
	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/config"
)

type ServeCommander struct {
	debug      bool
	logFile    string
	disableMCP bool
	configDir  string

	viper  *viper.Viper
	config *config.Config
}

const serveLongDesc string = `Run InnerAI services.

Use subcommands to run individual services or all services together:
  innerai serve            Run the gateway and the journal API together
  innerai serve gateway    Run just the coaching gateway
  innerai serve api        Run just the journal API

Both servers share one exchange journal. Edits to the [persona] section of
config.toml are applied to new requests without a restart.`

const serveShortDesc string = "Run InnerAI services"

var listenFlags = []string{
	config.FlagGatewayListen,
	config.FlagAPIListen,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.viper, cmder.config, err = services.LoadConfig(cmd,
				listenFlags,
				services.GatewayFlags,
				services.StorageFlags,
				services.EventStreamFlags,
			)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	services.RegisterFlags(cmd,
		listenFlags,
		services.GatewayFlags,
		services.StorageFlags,
		services.EventStreamFlags,
	)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Do not serve MCP tools on /mcp")

	cmd.AddCommand(gatewaycmder.NewGatewayCmd())
	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	log, closeLog, err := services.NewLogger(c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	driver, err := services.NewStorageDriver(ctx, c.config.Storage, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := services.NewPublisher(c.config.EventStream, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	gw, err := services.NewGateway(c.config, services.GatewayOptions{
		ConfigDir:  c.configDir,
		Driver:     driver,
		Publisher:  publisher,
		DisableMCP: c.disableMCP,
		Viper:      c.viper,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer gw.Close()

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.config.API.Listen,
	}, driver, log)
	defer apiServer.Shutdown()

	errChan := make(chan error, 2)

	go func() {
		if err := gw.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	}
}
