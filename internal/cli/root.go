package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/basir/internal/logging"
	"github.com/ppiankov/basir/internal/model"
)

// Version is set at build time via ldflags.
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool

	cfg    *model.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "basir",
	Short: "Basir - travel question router over a curated knowledge base",
	Long: `Basir answers free-text travel questions.

A question is classified into one or more travel topics (activity,
accommodation, visa, scam, dish, transportation, seasonal, restaurant).
Each topic is handled by its own specialist task: the most similar records
are retrieved from the vector store and summarized by a language model
into a fixed, validated JSON shape. Results are keyed by specialist role
and written to the output directory.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l
		zap.ReplaceGlobals(logger)

		if path := viper.ConfigFileUsed(); path != "" {
			logger.Debug("using config file", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
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
		fmt.Printf("basir %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.basir/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".basir"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// BASIR_RETRIEVAL_ADDRESS overrides retrieval.address
	viper.SetEnvPrefix("BASIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// optionalKeys are omitted from the marshalled defaults but must still be
// known to viper for env overrides to apply.
var optionalKeys = map[string]any{
	"classifier.api_key": "", "synthesis.api_key": "", "embedding.api_key": "",
	"classifier.base_url": "", "synthesis.base_url": "", "embedding.base_url": "",
	"classifier.use_bedrock": false, "synthesis.use_bedrock": false,
	"classifier.aws_region": "", "synthesis.aws_region": "",
	"classifier.aws_profile": "", "synthesis.aws_profile": "",
	"classifier.http_proxy": "", "classifier.https_proxy": "", "classifier.no_proxy": "",
	"synthesis.http_proxy": "", "synthesis.https_proxy": "", "synthesis.no_proxy": "",
	"retrieval.username": "", "retrieval.password": "", "retrieval.database": "",
	"cache.disk_dir": "",
}

// loadConfig merges defaults, config file, environment and flags into a
// validated configuration.
func loadConfig() (*model.Config, error) {
	defaults := model.DefaultConfig()
	if err := registerDefaults(defaults); err != nil {
		return nil, err
	}
	for key, zero := range optionalKeys {
		viper.SetDefault(key, zero)
	}

	loaded := model.DefaultConfig()
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(loaded)

	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, nil
}

// registerDefaults teaches viper every key of the default configuration.
func registerDefaults(defaults *model.Config) error {
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	flatten("", tree, viper.SetDefault)
	return nil
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, v)
	}
}

// applyProviderEnv fills credentials from the provider's conventional
// environment variables when the configuration leaves them empty.
func applyProviderEnv(c *model.Config) {
	for _, l := range []*model.LLMConfig{&c.Classifier, &c.Synthesis} {
		if l.APIKey == "" {
			l.APIKey = providerKey(l.Provider)
		}
		if strings.EqualFold(l.Provider, "ollama") {
			if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
				l.BaseURL = base
			}
		}
	}

	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = providerKey(c.Embedding.Provider)
	}
	if strings.EqualFold(c.Embedding.Provider, "ollama") {
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
			c.Embedding.BaseURL = base
		}
	}
}

func providerKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini", "genai":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
