package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/casefile/internal/ledger"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/metrics"
	"github.com/ppiankov/casefile/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	apiFlag string
	dataDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "casefile",
	Short: "casefile - turn call-in podcast transcripts into a tidy table of call records",
	Long: `casefile reads episode transcripts, asks a language model to pull out every
caller story, repairs each record to a fixed schema, checks it against the
transcript, and exports one row per call.

Extraction results are checkpointed per episode, so an interrupted run
resumes where it stopped and never pays for the same episode twice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("casefile v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.casefile/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", defaults.LLM.API, "model alias (haiku, sonnet, o4-mini, gpt-4o-mini, gpt-4.1-mini, llama3.1)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaults.DataDir, "data directory")

	_ = viper.BindPFlag("llm.api", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig loads .env, then the config file and CASEFILE_* variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: .env not loaded: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".casefile"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := setDefaults(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	viper.SetEnvPrefix("CASEFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every default key so CASEFILE_* variables can
// override settings that have no flag
func setDefaults() error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for key, value := range tree {
		viper.SetDefault(key, value)
	}
	return nil
}

// loadConfig layers viper settings over the defaults and picks up API keys
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" && cfg.LLM.OllamaBaseURL == "" {
		cfg.LLM.OllamaBaseURL = url
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app bundles what every working command needs
type app struct {
	cfg     *model.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	ledger  *ledger.Ledger
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	rt := &app{cfg: cfg, log: log}

	if cfg.Metrics.Enabled {
		rt.metrics = metrics.New()
	}
	if cfg.Ledger.Enabled {
		l, err := ledger.Open(cfg.LedgerPath())
		if err != nil {
			log.WithError(err).Warn("run ledger unavailable, estimates use the default session time")
		} else {
			rt.ledger = l
		}
	}
	return rt, nil
}

// Close flushes metrics and releases the ledger and log file
func (rt *app) Close() {
	if rt.metrics != nil && rt.cfg.Metrics.TextfilePath != "" {
		if err := rt.metrics.WriteTextfile(rt.cfg.Metrics.TextfilePath); err != nil {
			rt.log.WithError(err).Warn("metrics dump failed")
		}
	}
	if rt.ledger != nil {
		_ = rt.ledger.Close()
	}
	_ = rt.log.Close()
}

// signalContext is cancelled on Ctrl-C so the current session is dropped
// cleanly instead of half-written
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
