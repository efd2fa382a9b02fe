package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/client"
	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
	"github.com/codyseavey/pokecard-lookup/internal/tui"
)

var (
	serverURL  string
	language   string
	searchType string
	exportDir  string
	logFile    string
	logLevel   string
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pokecard",
	Short: "Look up Pokemon cards and track a collection from the terminal",
	Long: `Search English and Japanese Pokemon card databases, browse results,
and keep a session collection that can be exported as CSV.

With --server the searches go through a running lookup server. Without it
the upstream APIs are called directly using the server's configuration
(CONFIG_PATH, POKEMONTCG_API_KEY, JAPANESE_API_BASE_URL, ...).`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "", "Lookup server base URL (default: call upstream APIs directly)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "all", "Initial language scope: all, en or jpn")
	rootCmd.Flags().StringVarP(&searchType, "type", "t", "name", "Initial search field: name, set or artist")
	rootCmd.Flags().StringVarP(&exportDir, "export-dir", "o", ".", "Directory CSV exports are written to")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (default: no logging)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout when using --server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	scope, ok := models.ParseScope(language)
	if !ok {
		return fmt.Errorf("invalid --language %q: must be all, en or jpn", language)
	}
	field, ok := models.ParseSearchField(searchType)
	if !ok {
		return fmt.Errorf("invalid --type %q: must be name, set or artist", searchType)
	}

	logger, err := logging.NewFile(logFile, logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	searcher, err := newSearcher(logger)
	if err != nil {
		return err
	}

	return tui.Run(searcher, tui.Options{
		Field:     field,
		Scope:     scope,
		ExportDir: exportDir,
		Logger:    logger,
	})
}

func newSearcher(logger *zap.Logger) (tui.Searcher, error) {
	if serverURL != "" {
		logger.Info("using lookup server", zap.String("url", serverURL))
		return client.New(serverURL, timeout, logger), nil
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	english := services.NewPokemonTCGService(cfg.English, logger)
	var japanese services.CardSource
	if cfg.Japanese.Enabled() {
		japanese = services.NewJapaneseTCGService(cfg.Japanese, logger)
	}
	return services.NewSearchService(english, japanese, logger), nil
}
