package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/GarvitBanga/JobMatch/internal/fetch"
	"github.com/GarvitBanga/JobMatch/internal/limits"
	"github.com/GarvitBanga/JobMatch/internal/logger"
	"github.com/GarvitBanga/JobMatch/internal/match"
	"github.com/GarvitBanga/JobMatch/internal/match/gemini"
	"github.com/GarvitBanga/JobMatch/internal/pipeline"
	"github.com/GarvitBanga/JobMatch/internal/profile"
	"github.com/GarvitBanga/JobMatch/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowMatches     = "Show matches with rationale"
	PromptReportByCompany = "Report by company"
	PromptMatchesToFile   = "Dump matches to file"
	PromptExit            = "Exit"

	defaultScanDeadline = 3 * time.Minute
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowMatches, PromptReportByCompany, PromptMatchesToFile, PromptExit},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a career page snapshot and score discovered jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		scan(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("page", "p", "", "url of the career page the snapshot was taken from")
	scanCmd.Flags().StringP("html", "f", "", "page html snapshot: a local file, a url, or - for stdin")
	scanCmd.Flags().StringP("profile", "r", "", "json file with the candidate profile")
	scanCmd.Flags().Float64P("threshold", "t", 0, "minimum match score as a fraction between 0 and 1")
	scanCmd.Flags().BoolP("auto-approve", "y", false, "print the scan result as json and exit without prompting")
	scanCmd.Flags().String("identity", "", "identity string for rate limiting")

	scanCmd.MarkFlagRequired("page")
	scanCmd.MarkFlagRequired("html")

	viper.BindPFlag("identity", scanCmd.Flags().Lookup("identity"))
}

// scan is the main command for the cli.
func scan(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobmatch scan", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	pageURL := cmd.Flag("page").Value.String()
	snapshot, err := readSnapshot(cmd.Flag("html").Value.String())
	if err != nil {
		logger.Fatal("reading page snapshot", zap.Error(err))
	}

	prof, err := loadProfile(cmd.Flag("profile").Value.String())
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	threshold, err := cmd.Flags().GetFloat64("threshold")
	if err != nil || threshold < 0 || threshold > 1 {
		logger.Fatal("threshold must be a fraction between 0 and 1")
	}

	scanCfg := config.Scan
	limiter := limits.NewRateLimiter(scanCfg.Window, scanCfg.FetchCap, scanCfg.ScoreCap)
	cache := limits.NewCache[*fetch.FetchResult](scanCfg.CacheTTL, scanCfg.CacheCapacity)

	deadline := scanCfg.Deadline
	if deadline <= 0 {
		deadline = defaultScanDeadline
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	var matcher match.Matcher
	if config.AI != nil && config.AI.Enabled {
		matcher, err = newAIMatcher(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("configuring the ai matcher", zap.Error(err))
		}
	}

	var proxy *fetch.ProxyClient
	if config.Proxy != nil && config.Proxy.URL != "" {
		proxy = fetch.NewProxyClient(config.Proxy.URL, config.UserAgent, config.Proxy.Timeout, logger)
	}

	scanner := pipeline.NewScanner(pipeline.Config{
		Matcher:      matcher,
		Proxy:        proxy,
		Cache:        cache,
		Limiter:      limiter,
		MaxLinks:     scanCfg.MaxLinks,
		FetchTimeout: scanCfg.FetchTimeout,
		Concurrency:  scanCfg.Concurrency,
		UserAgent:    config.UserAgent,
		Logger:       logger,
	})

	resp := scanner.Scan(ctx, pipeline.Request{
		PageURL:   pageURL,
		PageHTML:  snapshot,
		Profile:   prof,
		Threshold: threshold,
		Identity:  resolveIdentity(config),
	})

	output, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(output))

	if !resp.Success {
		logger.Fatal("scan failed", zap.String("message", resp.Message))
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, resp, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, resp *pipeline.Response, logger *zap.Logger) error {
	switch action {
	case PromptShowMatches:
		for _, res := range resp.Matches {
			fmt.Printf("%2d. [%3d] %s / %s / %s\n    %s\n",
				res.Rank, res.Score, res.Title, res.Company, res.URL, res.Rationale,
			)
		}
		return nil
	case PromptReportByCompany:
		report := make(map[string]int)
		for _, res := range resp.Matches {
			report[res.Company]++
		}
		pretty, _ := json.MarshalIndent(report, "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", len(resp.Matches)))
		return nil
	case PromptMatchesToFile:
		filename, err := dumpMatches(resp)
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func readSnapshot(source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading snapshot from stdin: %w", err)
		}
		return string(data), nil
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: fetch.DefaultTimeout}
		resp, err := client.Get(source)
		if err != nil {
			return "", fmt.Errorf("fetching snapshot from %q: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetching snapshot from %q: %s", source, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("reading snapshot body: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("reading snapshot file %q: %w", source, err)
	}
	return string(data), nil
}

func loadProfile(path string) (*profile.CandidateProfile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return profile.LoadFile(path)
}

// resolveIdentity composes the rate-limiter key. The pipeline treats it as
// opaque; hostname plus user keeps budgets per machine account by default.
func resolveIdentity(config *Config) string {
	if config.Identity != "" {
		return config.Identity
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	username := "unknown-user"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	return hostname + "/" + username
}

func dumpMatches(resp *pipeline.Response) (string, error) {
	file, err := os.CreateTemp("", app+"-matches-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := json.MarshalIndent(resp.Matches, "", "  ")
	if err != nil {
		return "", err
	}
	if _, err := file.Write(data); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (match.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}
	if cfg.Gemini.APIKeyFile == "" {
		cfg.Gemini.APIKeyFile = viper.GetString("ai.gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	matcherLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewBatchMatcher(generator, matcherLogger, cfg.Gemini.MaxLogLength), nil
}
