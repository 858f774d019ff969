package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatch"
)

type Config struct {
	// Identity keys the fetch and scoring quotas. Defaults to the local
	// hostname and user when empty.
	Identity  string      `mapstructure:"identity"`
	UserAgent string      `mapstructure:"user-agent"`
	Scan      *ScanConfig `mapstructure:"scan"`
	Proxy     *ProxyConfig
	AI        *AIConfig `mapstructure:"ai"`
}

type ScanConfig struct {
	MaxLinks      int           `mapstructure:"max-links"`
	Concurrency   int           `mapstructure:"concurrency"`
	FetchTimeout  time.Duration `mapstructure:"fetch-timeout"`
	Deadline      time.Duration `mapstructure:"deadline"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl"`
	CacheCapacity int           `mapstructure:"cache-capacity"`
	Window        time.Duration `mapstructure:"window"`
	FetchCap      int           `mapstructure:"fetch-cap"`
	ScoreCap      int           `mapstructure:"score-cap"`
}

type ProxyConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch scans a career page for job postings and scores them against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Local .env files carry the gemini key file path during development.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for scan command now. If there is no config, we can skip initialization
	if scanCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A present but unparsable config file is fatal; a missing one means
	// defaults.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Scan == nil {
		config.Scan = &ScanConfig{}
	}

	return config, nil
}
