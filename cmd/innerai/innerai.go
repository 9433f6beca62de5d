// Package inneraicmder
package inneraicmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/innerai/cmd/innerai/auth"
	chatcmder "github.com/papercomputeco/innerai/cmd/innerai/chat"
	configcmder "github.com/papercomputeco/innerai/cmd/innerai/config"
	initcmder "github.com/papercomputeco/innerai/cmd/innerai/init"
	reframecmder "github.com/papercomputeco/innerai/cmd/innerai/reframe"
	servecmder "github.com/papercomputeco/innerai/cmd/innerai/serve"
	storycmder "github.com/papercomputeco/innerai/cmd/innerai/story"
	versioncmder "github.com/papercomputeco/innerai/cmd/version"
)

const inneraiLongDesc string = `InnerAI is an emotional coaching gateway in front of Gemini.

Run services using:
  innerai serve gateway    Run the coaching gateway
  innerai serve api        Run the exchange journal API
  innerai serve            Run both servers together

Talk to a running gateway using:
  innerai chat                         Start or resume a coaching session
  innerai reframe <emotion> <belief>   Reframe a negative belief
  innerai story <emotion> <belief>     Hear a short resilience story`

const inneraiShortDesc string = "InnerAI - Emotional Coaching Gateway"

func NewInnerAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "innerai",
		Short:         inneraiShortDesc,
		Long:          inneraiLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .innerai/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(reframecmder.NewReframeCmd())
	cmd.AddCommand(storycmder.NewStoryCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
