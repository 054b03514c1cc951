package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/projectprefs"
	"github.com/CreativeUnicorns/projectprefs/config"
	"github.com/CreativeUnicorns/projectprefs/l10n"
	"github.com/CreativeUnicorns/projectprefs/storage"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	origin     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "projectprefs",
		Short: "Projects listing preferences store",
		Long: `projectprefs keeps the projects listing preferences of a browser origin:
the default filter, the view and visualization modes and the sort specifier.

It serves them over HTTP and reads or edits them from the command line.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (default $PROJECTPREFS_CONFIG or ./projectprefs.yaml)")
	root.PersistentFlags().StringVar(&opts.origin, "origin", "", "origin whose preferences are read or written (default from configuration)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newClearCmd(opts),
		newSortCmd(opts),
	)
	return root
}

// cliEnv is what a subcommand needs once configuration is loaded.
type cliEnv struct {
	cfg        config.Config
	logger     *projectprefs.DefaultLogger
	translator *l10n.Bundle
}

func (o *globalOptions) load(errOut io.Writer) (*cliEnv, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := projectprefs.ParseLogLevel(levelName)
	if err != nil {
		return nil, err
	}

	translator, err := l10n.Load(cfg.MessagesPath)
	if err != nil {
		return nil, err
	}

	return &cliEnv{
		cfg:        cfg,
		logger:     projectprefs.NewLogger(errOut, level),
		translator: translator,
	}, nil
}

// openPreferences opens the configured backend and binds the facade to the selected origin.
// The caller closes the returned backend.
func (o *globalOptions) openPreferences(rt *cliEnv) (*projectprefs.Preferences, storage.Backend, error) {
	backend, err := storage.Open(rt.cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	origin := o.origin
	if origin == "" {
		origin = rt.cfg.DefaultOrigin
	}
	store := storage.ForOrigin(backend, origin, storage.WithQuota(rt.cfg.Storage.QuotaBytes))

	prefs := projectprefs.New(
		projectprefs.WithStore(store),
		projectprefs.WithLogger(rt.logger),
	)
	return prefs, backend, nil
}
