package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dbgateway/gateway/internal/app"
)

var (
	cfgFile    string
	dsnFlag    string
	demoFlag   bool
	readOnly   bool
	appVersion string // set in Execute, used by serve/mcp for banners and server info
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Expose SQL, Redis, and Elasticsearch sources to AI agents over MCP",
		Long: `gateway connects to your databases, caches, and search indices and exposes
them to AI-agent clients as Model Context Protocol tools: execute_sql,
search_objects, redis_command, elasticsearch_search, and any custom SQL
tools you declare. One binary, one config file, zero client-side drivers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to sources.yaml")
	cmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "connect to a single source by DSN instead of --config")
	cmd.PersistentFlags().BoolVar(&demoFlag, "demo", false, "connect to a built-in in-memory SQLite demo source")
	cmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "force every source to readonly regardless of its own setting")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	viper.SetEnvPrefix("GATEWAY")
	viper.AutomaticEnv()

	if cfgFile == "" {
		if v := viper.GetString("config"); v != "" {
			cfgFile = v
		}
	}
	if dsnFlag == "" {
		dsnFlag = viper.GetString("dsn")
	}
	if !demoFlag {
		demoFlag = viper.GetBool("demo")
	}
	if !readOnly {
		readOnly = viper.GetBool("readonly")
	}
}

// bootstrapOptions translates the resolved persistent flags into
// app.Options, the single input both serve and mcp hand to app.Bootstrap.
func bootstrapOptions() app.Options {
	return app.Options{
		ConfigPath: cfgFile,
		DSN:        dsnFlag,
		Demo:       demoFlag,
		ReadOnly:   readOnly,
	}
}

// newMCPServerInstance builds a bare MCP server. serve uses it only to
// drive Registry.RegisterAll so the introspection API's tools[] field is
// populated; mcp builds its own and actually serves it.
func newMCPServerInstance() *server.MCPServer {
	return server.NewMCPServer(
		"Database Gateway MCP API",
		appVersion,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
}
