// Package gatewaycmder provides the command that runs only the coaching gateway.
package gatewaycmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/config"
)

type gatewayCommander struct {
	debug      bool
	logFile    string
	disableMCP bool
	configDir  string

	viper  *viper.Viper
	config *config.Config
}

const gatewayLongDesc string = `Run the InnerAI coaching gateway.

Serves POST /api/chat, /api/reframe and /api/story plus MCP tools on /mcp,
forwarding each call to the configured Gemini model. The API key is read from
GEMINI_API_KEY, INNERAI_GATEWAY_API_KEY or credentials.toml ("innerai auth").

The listen address also honors the PORT environment variable.`

const gatewayShortDesc string = "Run the InnerAI coaching gateway"

var listenFlags = []string{config.FlagGatewayListenStandalone}

func NewGatewayCmd() *cobra.Command {
	cmder := &gatewayCommander{}

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: gatewayShortDesc,
		Long:  gatewayLongDesc,
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

	return cmd
}

func (c *gatewayCommander) run(ctx context.Context) error {
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

	errChan := make(chan error, 1)
	go func() {
		if err := gw.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
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
