// Package authcmder provides the auth command for storing upstream API credentials.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/credentials"
)

const authLongDesc string = `Store API credentials for the upstream model provider.

Credentials are stored in credentials.toml in the .innerai/ directory. The
gateway falls back to them when no API key is set in the environment
(GEMINI_API_KEY) or in config.toml.

Supported providers: gemini

Examples:
  innerai auth gemini              Prompt for a Gemini API key
  innerai auth --list              List stored credentials
  innerai auth --remove gemini     Remove stored Gemini credentials
  echo $KEY | innerai auth gemini  Pipe API key from stdin`

const authShortDesc string = "Store API credentials for the upstream provider"

type authCommander struct {
	configDir string
	in        io.Reader
	out       io.Writer
}

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			ac := &authCommander{
				configDir: configDir,
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
			}

			switch {
			case listFlag:
				return ac.runList()
			case removeFlag != "":
				return ac.runRemove(removeFlag)
			default:
				if len(args) == 0 {
					return fmt.Errorf("provider argument required\n\nSupported providers: %s",
						strings.Join(credentials.SupportedProviders(), ", "))
				}
				return ac.runAuth(args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedProviders(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a provider")

	return cmd
}

func (ac *authCommander) runAuth(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))

	if !credentials.IsSupportedProvider(provider) {
		return fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s",
			provider, strings.Join(credentials.SupportedProviders(), ", "))
	}

	apiKey, err := ac.readAPIKey(provider)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(ac.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(provider, apiKey); err != nil {
		return err
	}

	envVar := credentials.EnvVarForProvider(provider)
	fmt.Fprintf(ac.out, "\n  %s Stored %s credentials %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(provider),
		cliui.DimStyle.Render("(overridden by "+envVar+")"),
	)

	return nil
}

func (ac *authCommander) runList() error {
	mgr, err := credentials.NewManager(ac.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	providers, err := mgr.ListProviders()
	if err != nil {
		return err
	}

	if len(providers) == 0 {
		fmt.Fprintf(ac.out, "\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(ac.out, "  Use 'innerai auth <provider>' to store credentials.\n")
		fmt.Fprintf(ac.out, "  Supported providers: %s\n\n", strings.Join(credentials.SupportedProviders(), ", "))
		return nil
	}

	fmt.Fprintf(ac.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, p := range providers {
		envVar := credentials.EnvVarForProvider(p)
		if envVar != "" {
			fmt.Fprintf(ac.out, "  %s  %s  %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(p),
				cliui.DimStyle.Render("→ "+envVar),
			)
		} else {
			fmt.Fprintf(ac.out, "  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(p))
		}
	}
	fmt.Fprintln(ac.out)

	return nil
}

func (ac *authCommander) runRemove(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))

	mgr, err := credentials.NewManager(ac.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(provider); err != nil {
		return err
	}

	fmt.Fprintf(ac.out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(provider))

	return nil
}

// readAPIKey reads an API key from the command input. A terminal gets a hidden
// prompt; anything else is read as a single line.
func (ac *authCommander) readAPIKey(provider string) (string, error) {
	if f, ok := ac.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		envVar := credentials.EnvVarForProvider(provider)
		fmt.Fprintf(ac.out, "Enter API key for %s (%s): ", provider, envVar)

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(ac.out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(ac.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
