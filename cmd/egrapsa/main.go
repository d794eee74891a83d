// Copyright Szymon Zygula, 2026. All rights reserved.

// Package main is the entry point for the egrapsa CLI.
// See docs/ARCHITECTURE.md § Pipeline, § Source Collaborator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/szymon-zygula/egrapsa/internal/logging"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the egrapsa CLI.
var rootCmd = &cobra.Command{
	Use:   "egrapsa",
	Short: "Typeset classical texts in the manner of early modern printing",
	Long: `egrapsa converts classical texts into LaTeX styled after 17th and
18th century printing: long s, ligatures, ornaments, drop capitals and
catchwords, all driven by a declarative style file.

Texts are identified by CTS URN (fetched from a Scaife viewer) or by a
local path to a TEI XML or plain-text file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, level, logging.Format(viper.GetString("log_format")))
		slog.SetDefault(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./egrapsa.yaml or ~/.config/egrapsa/config.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("log_format", pf.Lookup("log-format"))

	viper.SetDefault("source.base_url", "https://scaife.perseus.org")
	viper.SetDefault("source.timeout", 60*time.Second)
	viper.SetDefault("source.user_agent", "egrapsa/"+version)
	viper.SetDefault("source.max_retries", 5)
	viper.SetDefault("layout.words_per_page", types.DefaultWordsPerPage)
	viper.SetDefault("layout.words_per_line", types.DefaultWordsPerLine)
	viper.SetDefault("output.standalone", true)
	if dir, err := os.UserCacheDir(); err == nil {
		viper.SetDefault("source.cache_dir", filepath.Join(dir, "egrapsa"))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("egrapsa")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "egrapsa"))
		}
	}

	viper.SetEnvPrefix("EGRAPSA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "error [config]: reading %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

// loadConfig decodes the pipeline configuration from viper.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, &types.ConfigError{Path: viper.ConfigFileUsed(), Message: "decoding configuration", Err: err}
	}
	return cfg, nil
}

// report prints err in the form "error [<kind>]: <message>".
func report(err error) {
	fmt.Fprintf(os.Stderr, "error [%s]: %v\n", types.Kind(err), err)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		report(err)
		os.Exit(1)
	}
}
