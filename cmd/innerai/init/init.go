// Package initcmder provides the init command for initializing a local
// .innerai directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/innerai/pkg/cliui"
	"github.com/papercomputeco/innerai/pkg/config"
)

const (
	dirName    = ".innerai"
	configFile = "config.toml"

	remoteTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .innerai/ directory in the current working directory.

Creates a local .innerai/ directory that takes precedence over the default
~/.innerai/ directory for configuration, credentials and the saved chat
session. A config.toml with default values is written when none exists.

Use --preset to start from a persona preset or from a config.toml served
over HTTP. A preset always overwrites an existing config.toml.

Presets: english, korean

Examples:
  innerai init
  innerai init --preset korean
  innerai init --preset https://example.com/innerai/config.toml`

const initShortDesc string = "Initialize a local .innerai/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	ic := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ic.out = cmd.OutOrStdout()
			return ic.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&ic.preset, "preset", "", "Persona preset name or URL of a config.toml")

	return cmd
}

func (ic *initCommander) run(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	existed := false
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		existed = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .innerai directory: %w", err)
	}

	cfg, err := ic.resolveConfig(ctx)
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, configFile)
	if cfg == nil {
		if _, err := os.Stat(configPath); err == nil {
			ic.report(existed, dir)
			return nil
		}
		cfg = config.NewDefaultConfig()
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	ic.report(existed, dir)
	fmt.Fprintf(ic.out, "  %s %s\n", cliui.DimStyle.Render("Wrote"), configPath)
	return nil
}

func (ic *initCommander) report(existed bool, dir string) {
	if existed {
		fmt.Fprintf(ic.out, "Already initialized: %s\n", dir)
		return
	}
	fmt.Fprintf(ic.out, "%s Initialized .innerai directory: %s\n", cliui.SuccessMark, dir)
}

// resolveConfig returns nil when no preset was given.
func (ic *initCommander) resolveConfig(ctx context.Context) (*config.Config, error) {
	preset := strings.TrimSpace(ic.preset)
	switch {
	case preset == "":
		return nil, nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(ctx, preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("fetching remote config: empty body")
	}

	return config.ParseConfigTOML(data)
}
