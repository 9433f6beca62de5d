// Package apicmder provides the command that runs only the journal API server.
package apicmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/api"
	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/config"
)

type apiCommander struct {
	debug   bool
	logFile string
	config  *config.Config
}

const apiLongDesc string = `Run the InnerAI journal API server for inspecting recorded exchanges.

Point it at the same --sqlite or --postgres journal the gateway writes to.`

const apiShortDesc string = "Run the InnerAI journal API server"

var listenFlags = []string{config.FlagAPIListenStandalone}

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			_, cmder.config, err = services.LoadConfig(cmd, listenFlags, services.StorageFlags)
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

	services.RegisterFlags(cmd, listenFlags, services.StorageFlags)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *apiCommander) run(ctx context.Context) error {
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

	server := api.NewServer(api.Config{
		ListenAddr: c.config.API.Listen,
	}, driver, log)
	defer server.Shutdown()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
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
