// Package reframecmder provides the reframe command: a one-shot request for a
// positive reframe of a negative belief.
package reframecmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/client"
	"github.com/papercomputeco/innerai/pkg/config"
)

const reframeLongDesc string = `Ask the innerai gateway for one short, positive reframe of a negative belief.

The first argument is the emotion; the rest is the belief.

Examples:
  innerai reframe sad "I always fail"
  innerai reframe anxious nobody will like my work`

const reframeShortDesc string = "Reframe a negative belief"

var reframeFlags = []string{config.FlagGatewayTarget}

func NewReframeCmd() *cobra.Command {
	var gatewayTarget string

	cmd := &cobra.Command{
		Use:   "reframe <emotion> <belief...>",
		Short: reframeShortDesc,
		Long:  reframeLongDesc,
		Args:  cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := services.LoadConfig(cmd, reframeFlags)
			if err != nil {
				return err
			}
			gatewayTarget = cfg.Client.GatewayTarget
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(gatewayTarget)
			if err != nil {
				return err
			}

			reframe, err := cl.Reframe(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s %s\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(reframe))
			return nil
		},
	}

	services.RegisterFlags(cmd, reframeFlags)

	return cmd
}
