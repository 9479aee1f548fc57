package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"linkshelf/internal/config"
	"linkshelf/internal/database"
	"linkshelf/internal/youtube"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "linkctl",
	Short: "linkshelf operator tools",
	Long: `linkctl works directly against the linkshelf database.

It can extract links from files without touching the database, import
files into a user's library and create accounts.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.AddCommand(newExtractCmd(), newVideoIDCmd(), newImportCmd(), newUserCmd())
}

// connect loads configuration and opens the primary database.
func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newFetcher(cfg *config.Config) *youtube.Client {
	return youtube.NewClient(youtube.Config{
		APIKey:        cfg.YouTubeAPIKey,
		BaseURL:       cfg.YouTubeAPIURL,
		Timeout:       time.Duration(cfg.MetadataTimeoutSeconds) * time.Second,
		RatePerSecond: cfg.MetadataRatePerSecond,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
