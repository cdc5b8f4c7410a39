package main

import (
	"context"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jaye773/summarizer-core/pkg/config"
)

func executeContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

var log = logging.Logger("cmd")

const shortDescription = `
summarizerd runs the async job-processing core of a video summarization
service: priority queue, worker pool, durable job state, and an SSE event
stream.
`

var (
	cfgFile  string
	logLevel string
	rootCmd  = &cobra.Command{
		Use:     "summarizerd",
		Short:   shortDescription,
		Version: buildVersion,
	}
)

func init() {
	cobra.OnInitialize(initLogging, initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level")

	rootCmd.PersistentFlags().String("data-dir", config.DefaultDataDir, "state store data directory")
	cobra.CheckErr(viper.BindPFlag("repo.data_dir", rootCmd.PersistentFlags().Lookup("data-dir")))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(jobsCmd)
}

func initConfig() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("SUMMARIZER")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		cobra.CheckErr(viper.ReadInConfig())
	} else {
		viper.SetConfigName("summarizer-config")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		_ = viper.ReadInConfig()
	}
}

func initLogging() {
	if logLevel != "" {
		ll, err := logging.LevelFromString(logLevel)
		cobra.CheckErr(err)
		logging.SetAllLoggers(ll)
		return
	}
	logging.SetAllLoggers(logging.LevelInfo)
	logging.SetLogLevel("eventbus", "info")
	logging.SetLogLevel("worker", "info")
	logging.SetLogLevel("queue", "info")
	logging.SetLogLevel("statestore", "warn")
	logging.SetLogLevel("telemetry", "warn")
}
