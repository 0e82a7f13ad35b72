package kv

import (
	"github.com/ValentinKolb/zKV/cmd/util"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/client"
	"github.com/ValentinKolb/zKV/rpc/transport/http"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value and sorted set operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupRPCClientFlags(KeyValueCommands)

	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(batchCmd)
	KeyValueCommands.AddCommand(listCmd)
	KeyValueCommands.AddCommand(zaddCmd)
	KeyValueCommands.AddCommand(zremCmd)
	KeyValueCommands.AddCommand(zrangeCmd)
	KeyValueCommands.AddCommand(zscoreCmd)
	KeyValueCommands.AddCommand(zcardCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the RPC store client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	rpcStore, err = client.NewRPCStore(
		util.GetShardID(),
		*util.GetClientConfig(),
		http.NewHttpClientTransport(),
		s,
	)
	return err
}
