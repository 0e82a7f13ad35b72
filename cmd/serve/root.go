package serve

import (
	cmdUtil "github.com/ValentinKolb/zKV/cmd/util"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/server"
	"github.com/ValentinKolb/zKV/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the zKV server",
		Long:    `Start the zKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ZKV_<flag> (e.g. ZKV_API_ENDPOINT=0.0.0.0:8000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	key := "shards"
	ServeCmd.PersistentFlags().String(key, "100=lstore", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is lstore"))

	key = "engine-shards"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of internal shards of each store. 0 uses the number of CPUs"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Read and write timeout of the servers in seconds"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the RPC server will listen"))

	key = "api-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address on which the REST API will listen (e.g. 0.0.0.0:3030). Empty disables the REST API"))

	key = "api-shard"
	ServeCmd.PersistentFlags().Uint64(key, 100, cmdUtil.WrapString("The shard served by the REST API"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	shards, err := cmdUtil.ParseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}

	serveCmdConfig.Shards = shards
	serveCmdConfig.EngineShards = viper.GetInt("engine-shards")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.APIEndpoint = viper.GetString("api-endpoint")
	serveCmdConfig.APIShard = viper.GetUint64("api-shard")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	return nil
}

// run starts the zKV server
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		http.NewHttpServerTransport(),
		s,
	)

	return serv.Serve()
}
