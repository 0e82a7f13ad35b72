package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/zKV/cmd/kv"
	"github.com/ValentinKolb/zKV/cmd/serve"
	"github.com/ValentinKolb/zKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "zkv",
		Short: "in-memory key-value store with sorted sets",
		Long: fmt.Sprintf(`zKV (v%s)

A sharded, concurrent in-memory key-value store written in Go.
Keys hold either a text value or a sorted set of scored members
that supports range queries by score.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zKV v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use for rpc (json, gob, binary)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
