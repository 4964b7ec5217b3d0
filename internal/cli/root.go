// Package cli implements the hoverlex command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hoverlex",
	Short: "Hoverlex - text extraction around a pointer for dictionary lookups",
	Long: `Hoverlex extracts the text around an anchor in an HTML document the way a
pop-up dictionary does: up to 13 UTF-16 code units forward and backward,
crossing inline markup only, skipping ruby annotations, and recording exactly
which text node every extracted character came from.

Anchors that start with Japanese script (kana, kanji, full-width forms) are
sent to a configurable lookup service and the matched text is highlighted.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose || viper.GetBool("output.verbose"))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hoverlex %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.hoverlex/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging, span details)")
	rootCmd.PersistentFlags().String("format", "text", "output format: text or json")
	rootCmd.PersistentFlags().String("provider", "", "lookup provider: http, openai, ollama (empty disables lookups)")
	rootCmd.PersistentFlags().String("endpoint", "", "lookup endpoint URL (http provider) or API base URL")
	rootCmd.PersistentFlags().String("model", "", "model name for openai/ollama providers")
	rootCmd.PersistentFlags().Int("max-length", model.MaxWordLength, "code units extracted in each direction")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the lookup response cache")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("lookup.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("lookup.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("lookup.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("extract.max_word_length", rootCmd.PersistentFlags().Lookup("max-length"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warn().Err(err).Msg("cannot find home directory")
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".hoverlex"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// HOVERLEX_LOOKUP_PROVIDER overrides lookup.provider and so on
	viper.SetEnvPrefix("HOVERLEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}
	_ = viper.BindEnv("lookup.api_key", "HOVERLEX_LOOKUP_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	} else if cfgFile != "" {
		log.Warn().Err(err).Str("file", cfgFile).Msg("cannot read config file")
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Extract.MaxWordLength <= 0 {
		cfg.Extract.MaxWordLength = model.MaxWordLength
	}
	return cfg, nil
}

// configKeys lists the environment-overridable settings
var configKeys = []string{
	"extract.max_word_length",
	"style.cache_size",
	"http.timeout", "http.user_agent", "http.max_body_bytes", "http.respect_robots",
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
	"lookup.provider", "lookup.endpoint", "lookup.api_key", "lookup.model", "lookup.timeout",
	"lookup.rate_limit", "lookup.burst", "lookup.max_tokens", "lookup.dictionary", "lookup.language",
	"lookup.wait_for_reply",
	"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"concurrency.workers",
	"output.verbose", "output.format",
}

// setupLogging sends human-readable logs to stderr
func setupLogging(debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
