// Command irtool encodes plain-text logs into IR streams, decodes them back, searches them
// with wildcard queries and prints logtype statistics.
//
// Every flag can also be set through the environment with the IRTOOL_ prefix, for example
// IRTOOL_COMPRESSION=zstd, or through a config.yaml in the working directory.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newConfig() *viper.Viper {
	config := viper.New()
	config.AddConfigPath(".")
	config.SetConfigType("yaml")
	config.SetConfigName("config")
	config.SetEnvPrefix("IRTOOL")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	return config
}

func newRootCommand(config *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "irtool",
		Short:         "Encode, decode and search IR log streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := config.BindPFlags(cmd.PersistentFlags()); err != nil {
				return err
			}
			if err := config.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return err
				}
			}

			return nil
		},
	}

	rootCmd.AddCommand(Encode(config))
	rootCmd.AddCommand(Decode(config))
	rootCmd.AddCommand(Search(config))
	rootCmd.AddCommand(Stats(config))
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Increase log verbosity.")
	rootCmd.PersistentFlags().StringP("compression", "c", "auto", "Stream compression: auto (from the file extension), none, zstd, s2 or lz4.")
	rootCmd.PersistentFlags().String("timestamp-layout", defaultTimestampLayout, "Go time layout of the timestamp starting each text line.")

	return rootCmd
}

func main() {
	config := newConfig()
	if err := newRootCommand(config).Execute(); err != nil {
		l := getLogger(config)
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}
