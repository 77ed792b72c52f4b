// Package command implements the graphtool subcommands: a cobra+viper CLI
// that loads an N-Quads dataset into the in-memory quad store and runs one
// of the canned demo scenarios against it.
package command

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/shapeql/clog"
)

const (
	keyDataset = "dataset"
	keyVerbose = "verbose"
)

// NewRootCmd builds the graphtool root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphtool",
		Short: "Demo CLI for the shapeql quad-graph query engine.",
	}
	cmd.PersistentFlags().StringP("dataset", "d", "testdata/social.nq", "N-Quads dataset to load before running")
	cmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")
	viper.BindPFlag(keyDataset, cmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag(keyVerbose, cmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(func() {
		clog.SetV(viper.GetInt(keyVerbose))
	})

	cmd.AddCommand(NewRunCmd())
	return cmd
}
