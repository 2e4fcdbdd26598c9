// finharvest collects Korean market data: financial statements and news.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kfinlab/finharvest/internal/config"
	"github.com/kfinlab/finharvest/internal/finstat"
	"github.com/kfinlab/finharvest/internal/newsscan"
	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/internal/providers"
	"github.com/kfinlab/finharvest/internal/providers/opendart"
	"github.com/kfinlab/finharvest/internal/report"
	"github.com/kfinlab/finharvest/internal/store"
	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finharvest",
	Short: "Korean market financial statements and news collection",
	Long: `finharvest collects Korean market data through two pipelines:
financial statements for every listed company from the OpenDART
disclosure API, and data-asset news coverage per company from the Naver
search API, cached in SQLite and aggregated into CSV reports.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Providers read their credentials from the environment;
		// propagate file-sourced keys so both paths behave the same.
		if cfg.Dart.APIKey != "" {
			os.Setenv("OPENDART_API_KEY", cfg.Dart.APIKey)
		}
		if cfg.Naver.ClientID != "" {
			os.Setenv("NAVER_CLIENT_ID", cfg.Naver.ClientID)
		}
		if cfg.Naver.ClientSecret != "" {
			os.Setenv("NAVER_CLIENT_SECRET", cfg.Naver.ClientSecret)
		}
		return providers.RegisterAll()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(financialsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(marketNewsCmd)
}

// buildLogger constructs the pipeline logger from the logging config.
func buildLogger() *zap.Logger {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	var zcfg zap.Config
	if cfg.Logging.Format == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zap.Must(zcfg.Build())
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Storage.CachePath)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func secDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finharvest %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials, and collection progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  finharvest status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:    %s (%s)\n", version, commit)
		fmt.Printf("  Time (KST): %s\n", utils.NowKST().Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News window:   %s .. %s\n", cfg.News.StartDate, cfg.News.EndDate)
		fmt.Printf("    Output dir:    %s\n", cfg.Storage.OutputDir)
		fmt.Printf("    Cache:         %s\n", cfg.Storage.CachePath)
		fmt.Printf("    Processed log: %s\n", cfg.Storage.ProcessedLog)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-22s %s\n", k.Name+":", status)
		}
		fmt.Println()

		fmt.Println("  Providers:")
		for _, info := range provider.Global().List() {
			fmt.Printf("    %-12s %d models\n", info.Name, len(info.Models))
		}

		// Collection progress, when a cache exists.
		if _, err := os.Stat(cfg.Storage.CachePath); err == nil {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			counts, err := st.StatusCounts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Println("  News scan progress:")
			for _, s := range []models.ProcessingStatus{models.StatusPending, models.StatusCompleted, models.StatusFailed} {
				fmt.Printf("    %-12s %d\n", string(s)+":", counts[s])
			}
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Sync the listed-company directory into the cache",
	Long: `Download the OpenDART corporation directory, filter it to listed
companies with recent disclosure activity, and register them as pending
work in the cache. Already-registered companies keep their status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := provider.Global().Fetch(cmd.Context(), provider.ModelCompanyDirectory, provider.QueryParams{
			opendart.ParamCutoffYears: strconv.Itoa(cfg.Dart.DelistCutoffYears),
		})
		if err != nil {
			return fmt.Errorf("fetch company directory: %w", err)
		}
		companies, ok := res.Data.([]models.Company)
		if !ok {
			return fmt.Errorf("unexpected directory payload %T", res.Data)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		inserted, err := st.InsertCompanies(cmd.Context(), companies)
		if err != nil {
			return err
		}

		fmt.Printf("📋 Directory synced: %d listed companies, %d newly registered\n", len(companies), inserted)
		return nil
	},
}

// --- Financials Command ---

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Collect financial statements into per-company CSV files",
	Long: `Walk every listed company's statement periods (newest business year
first, quarterly before annual reports) and write the five headline
accounts to one CSV per company. A processed log makes interrupted
batches resumable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := buildLogger()
		defer logger.Sync()

		batch, _ := cmd.Flags().GetInt("batch")
		if batch == 0 {
			batch = cfg.Dart.BatchSize
		}
		startIndex, _ := cmd.Flags().GetInt("start-index")
		if startIndex == 0 {
			startIndex = cfg.Dart.StartIndex
		}
		endIndex, _ := cmd.Flags().GetInt("end-index")
		if endIndex == 0 {
			endIndex = cfg.Dart.EndIndex
		}
		startYear, _ := cmd.Flags().GetInt("start-year")
		if startYear == 0 {
			startYear = cfg.Dart.StartYear
		}
		endYear, _ := cmd.Flags().GetInt("end-year")
		if endYear == 0 {
			endYear = cfg.Dart.EndYear
		}

		collector := finstat.NewCollector(provider.Global(), logger, finstat.Options{
			OutputDir:    cfg.Storage.OutputDir,
			LogPath:      cfg.Storage.ProcessedLog,
			StartYear:    startYear,
			EndYear:      endYear,
			StartIndex:   startIndex,
			EndIndex:     endIndex,
			BatchSize:    batch,
			CutoffYears:  cfg.Dart.DelistCutoffYears,
			RequestDelay: msDuration(cfg.Dart.RequestDelayMs),
		})

		summary, err := collector.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("🎉 Batch finished")
		fmt.Printf("   directory: %d, already done: %d\n", summary.Directory, summary.Skipped)
		fmt.Printf("   attempted: %d, saved: %d, no data: %d\n", summary.Attempted, summary.Saved, summary.NoData)
		return nil
	},
}

func init() {
	financialsCmd.Flags().Int("batch", 0, "companies per session (default from config)")
	financialsCmd.Flags().Int("start-index", 0, "offset into the unprocessed company list")
	financialsCmd.Flags().Int("end-index", 0, "end offset (0 = end of list)")
	financialsCmd.Flags().Int("start-year", 0, "oldest business year (default: end year - 10)")
	financialsCmd.Flags().Int("end-year", 0, "newest business year (default: current year)")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Scan news for every pending company",
	Long: `For each pending company in the cache, search the news API with
company-name variations, fetch promising article bodies, and cache
every article that matches the data-asset keyword categories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := buildLogger()
		defer logger.Sync()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		scanner := newsscan.NewScanner(provider.Global(), st, logger, newsscan.Options{
			StartDate:     cfg.News.StartDate,
			EndDate:       cfg.News.EndDate,
			MaxArticles:   cfg.News.MaxArticles,
			MaxVariations: cfg.News.MaxVariations,
			Concurrency:   cfg.News.Concurrency,
			FetchDelay:    msDuration(cfg.News.FetchDelayMs),
			FetchTimeout:  secDuration(cfg.News.FetchTimeoutSec),
			ContentMaxLen: cfg.News.ContentMaxLen,
		})

		summary, err := scanner.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("🎉 Scan finished")
		fmt.Printf("   companies: %d, completed: %d, failed: %d\n", summary.Companies, summary.Completed, summary.Failed)
		fmt.Printf("   matched articles cached: %d\n", summary.Articles)
		return nil
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the news-scan summary and detail CSV reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		paths, err := report.Write(cmd.Context(), st, cfg.Storage.ReportDir)
		if err != nil {
			return err
		}
		fmt.Println("💾 Reports written:")
		fmt.Printf("   %s\n", paths.Summary)
		fmt.Printf("   %s\n", paths.Detail)
		return nil
	},
}

// --- Market News Command ---

var marketNewsCmd = &cobra.Command{
	Use:   "market-news",
	Short: "Show recent market headlines from Korean financial RSS feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		query, _ := cmd.Flags().GetString("query")

		params := provider.QueryParams{provider.ParamLimit: strconv.Itoa(limit)}
		if query != "" {
			params[provider.ParamQuery] = query
		}

		res, err := provider.Global().Fetch(cmd.Context(), provider.ModelMarketNews, params)
		if err != nil {
			return fmt.Errorf("fetch market news: %w", err)
		}
		articles, ok := res.Data.([]models.Article)
		if !ok {
			return fmt.Errorf("unexpected market news payload %T", res.Data)
		}

		if len(articles) == 0 {
			fmt.Println("No headlines right now.")
			return nil
		}
		for _, a := range articles {
			stamp := ""
			if !a.PublishedAt.IsZero() {
				stamp = a.PublishedAt.Format("01-02 15:04 ")
			}
			fmt.Printf("  %s%s\n      %s\n", stamp, a.Title, a.Link)
		}
		return nil
	},
}

func init() {
	marketNewsCmd.Flags().Int("limit", 20, "max headlines to show")
	marketNewsCmd.Flags().String("query", "", "only headlines mentioning this text")
}
