// Package chatcmder provides the chat command for an interactive coaching
// conversation through a running innerai gateway.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/cmd/innerai/serve/services"
	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/client"
	"github.com/papercomputeco/innerai/pkg/config"
	"github.com/papercomputeco/innerai/pkg/dotdir"
	"github.com/papercomputeco/innerai/pkg/llm"
)

type chatCommander struct {
	gatewayTarget string
	language      string
	configDir     string
	fresh         bool
	raw           bool

	dotdir *dotdir.Manager
}

const chatLongDesc string = `Start an interactive coaching conversation through the innerai gateway.

The conversation is saved in the .innerai/ directory after every reply and
resumed the next time "innerai chat" runs. Use --new (or type /new) to start
over. Type /exit or press Ctrl+D to quit.

Examples:
  innerai chat
  innerai chat --language ko
  innerai chat --new --gateway-target http://localhost:3000`

const chatShortDesc string = "Interactive coaching chat through the innerai gateway"

var chatFlags = []string{
	config.FlagGatewayTarget,
	config.FlagLanguage,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{
		dotdir: dotdir.NewManager(),
	}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			_, cfg, err := services.LoadConfig(cmd, chatFlags)
			if err != nil {
				return err
			}
			cmder.gatewayTarget = cfg.Client.GatewayTarget
			cmder.language = cfg.Persona.Language
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.Flags().Changed("language"))
		},
	}

	services.RegisterFlags(cmd, chatFlags)
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Discard the saved conversation and start fresh")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print replies without markdown rendering")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, in io.Reader, out io.Writer, languageSet bool) error {
	cl, err := client.New(c.gatewayTarget)
	if err != nil {
		return err
	}

	if c.fresh {
		if err := c.dotdir.ClearSession(c.configDir); err != nil {
			return err
		}
	}

	session, err := c.dotdir.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Fprintln(out)
	if session != nil && len(session.Turns) > 0 {
		fmt.Fprintf(out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(session.Turns))),
		)
		// A saved session keeps its language unless one is asked for.
		if !languageSet && session.Language != "" {
			c.language = session.Language
		}
	} else {
		session = &dotdir.SessionState{}
		fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	session.Language = c.language

	fmt.Fprintf(out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Language:"),
		cliui.NameStyle.Render(c.language),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /new to start over, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, cliui.YouStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(out)
			return scanner.Err()
		case "/new":
			session.Turns = nil
			if err := c.dotdir.ClearSession(c.configDir); err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			continue
		}

		session.Turns = append(session.Turns, llm.NewTextTurn(llm.RoleUser, input))

		reply, err := cl.Chat(ctx, session.Turns, c.language)
		if err != nil {
			fmt.Fprintf(out, "  %s %v\n\n", cliui.FailMark, err)
			// Drop the unanswered message so it can be retried.
			session.Turns = session.Turns[:len(session.Turns)-1]
			continue
		}

		session.Turns = append(session.Turns, llm.NewTextTurn(llm.RoleModel, reply))
		if err := c.dotdir.SaveSession(session, c.configDir); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		fmt.Fprintln(out, cliui.CoachStyle.Render("coach>"))
		fmt.Fprintln(out, c.render(reply))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

func (c *chatCommander) render(reply string) string {
	if c.raw {
		return reply + "\n"
	}

	rendered, err := cliui.RenderMarkdown(reply)
	if err != nil {
		return reply + "\n"
	}
	return rendered
}
