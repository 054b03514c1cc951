package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/projectprefs"
)

func newSortCmd(opts *globalOptions) *cobra.Command {
	sortCmd := &cobra.Command{
		Use:   "sort",
		Short: "Inspect sort specifiers",
		Long: `Inspect projects sort specifiers such as "-coverage".

Available subcommands:
  parse  - Split a specifier into its field and direction
  switch - Mirror a specifier between the overall and new code periods
  label  - Print the display label of a sort field`,
	}

	sortCmd.AddCommand(
		&cobra.Command{
			Use:   "parse <sort>",
			Short: "Split a sort specifier into field and direction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := opts.load(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				s := projectprefs.ParseSorting(args[0])
				out := struct {
					projectprefs.Sorting
					Label string `json:"label"`
				}{s, projectprefs.LocalizeSorting(rt.translator, s.Value)}

				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(out)
			},
		},
		&cobra.Command{
			Use:   "switch <sort>",
			Short: "Mirror a sort specifier to the other period",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), projectprefs.SwitchSorting(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "label [field]",
			Short: "Print the display label of a sort field",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := opts.load(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				field := ""
				if len(args) == 1 {
					field = args[0]
				}
				fmt.Fprintln(cmd.OutOrStdout(), projectprefs.LocalizeSorting(rt.translator, field))
				return nil
			},
		},
	)
	return sortCmd
}
