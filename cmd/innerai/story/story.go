// Package storycmder provides the story command: a one-shot request for a
// short resilience story.
package storycmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/client"
	"github.com/papercomputeco/innerai/pkg/config"
)

const storyLongDesc string = `Ask the innerai gateway for a short story about someone who overcame the
same emotion and belief.

The first argument is the emotion; the rest is the belief.

Examples:
  innerai story sad "I always fail"
  innerai story --raw lonely nobody understands me`

const storyShortDesc string = "Tell a resilience story for an emotion and belief"

var storyFlags = []string{config.FlagGatewayTarget}

func NewStoryCmd() *cobra.Command {
	var (
		gatewayTarget string
		raw           bool
	)

	cmd := &cobra.Command{
		Use:   "story <emotion> <belief...>",
		Short: storyShortDesc,
		Long:  storyLongDesc,
		Args:  cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := services.LoadConfig(cmd, storyFlags)
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

			out := cmd.OutOrStdout()
			var story string
			err = cliui.Step(cmd.ErrOrStderr(), "Writing your story", func() error {
				var stepErr error
				story, stepErr = cl.Story(cmd.Context(), args[0], strings.Join(args[1:], " "))
				return stepErr
			})
			if err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(out, story)
				return nil
			}

			rendered, err := cliui.RenderMarkdown(story)
			if err != nil {
				fmt.Fprintln(out, story)
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	services.RegisterFlags(cmd, storyFlags)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the story without markdown rendering")

	return cmd
}
