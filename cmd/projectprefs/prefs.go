package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/projectprefs"
)

const unsetValue = "<unset>"

func newGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored preferences of the origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPreferences(cmd, opts, func(ctx context.Context, prefs *projectprefs.Preferences, _ *cliEnv) error {
				printPreferences(ctx, cmd.OutOrStdout(), prefs)
				return nil
			})
		},
	}
}

func newSetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "set <filter|view|visualization|sort> <value>",
		Short:     "Store one preference of the origin",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"filter", "view", "visualization", "sort"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value := args[0], args[1]
			return withPreferences(cmd, opts, func(ctx context.Context, prefs *projectprefs.Preferences, rt *cliEnv) error {
				if err := setPreference(ctx, prefs, rt.logger, name, value); err != nil {
					return err
				}
				// Writes are best-effort; read back to tell the user when one was dropped.
				if got, _ := readPreference(ctx, prefs, name); got != value {
					return fmt.Errorf("%s was not stored, the origin storage may be full", name)
				}
				return nil
			})
		},
	}
}

func newClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "clear <view|visualization|sort>",
		Short:     "Remove one preference of the origin",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"view", "visualization", "sort"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "filter" {
				return fmt.Errorf("%w: the default filter can only be switched between %q and %q", projectprefs.ErrInvalidInput, projectprefs.FilterFavorite, projectprefs.FilterAll)
			}
			return withPreferences(cmd, opts, func(ctx context.Context, prefs *projectprefs.Preferences, rt *cliEnv) error {
				return setPreference(ctx, prefs, rt.logger, args[0], "")
			})
		},
	}
}

// withPreferences loads configuration, opens the store and runs fn against it.
func withPreferences(cmd *cobra.Command, opts *globalOptions, fn func(context.Context, *projectprefs.Preferences, *cliEnv) error) error {
	rt, err := opts.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	prefs, backend, err := opts.openPreferences(rt)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			rt.logger.Error("Failed to close storage", "error", err)
		}
	}()
	return fn(cmd.Context(), prefs, rt)
}

func setPreference(ctx context.Context, prefs *projectprefs.Preferences, logger projectprefs.Logger, name, value string) error {
	switch name {
	case "filter":
		switch value {
		case projectprefs.FilterFavorite:
			prefs.SaveFavorite(ctx)
		case projectprefs.FilterAll:
			prefs.SaveAll(ctx)
		default:
			return fmt.Errorf("%w: filter must be %q or %q", projectprefs.ErrInvalidValue, projectprefs.FilterFavorite, projectprefs.FilterAll)
		}
	case "view":
		if value != "" && !projectprefs.IsView(value) {
			logger.Warn("Storing an unknown view", "view", value)
		}
		prefs.SaveView(ctx, value)
	case "visualization":
		if value != "" && !projectprefs.IsVisualization(value) {
			logger.Warn("Storing an unknown visualization", "visualization", value)
		}
		prefs.SaveVisualization(ctx, value)
	case "sort":
		prefs.SaveSort(ctx, value)
	default:
		return fmt.Errorf("%w: unknown preference %q", projectprefs.ErrInvalidInput, name)
	}
	return nil
}

func readPreference(ctx context.Context, prefs *projectprefs.Preferences, name string) (string, bool) {
	switch name {
	case "filter":
		return prefs.DefaultFilter(ctx)
	case "view":
		return prefs.View(ctx)
	case "visualization":
		return prefs.Visualization(ctx)
	case "sort":
		return prefs.Sort(ctx)
	}
	return "", false
}

func printPreferences(ctx context.Context, w io.Writer, prefs *projectprefs.Preferences) {
	for _, name := range []string{"filter", "view", "visualization", "sort"} {
		v, ok := readPreference(ctx, prefs, name)
		if !ok {
			v = unsetValue
		}
		fmt.Fprintf(w, "%-14s %s\n", name, v)
	}
}
