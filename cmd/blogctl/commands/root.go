package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mentally-gamez-soft/ws-blog/internal/config"
	"github.com/mentally-gamez-soft/ws-blog/internal/db"
)

var (
	dbURL      string
	jsonOutput bool
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Administer the blog database",
	Long: `blogctl manages users and posts directly against the blog database.

Connection settings default to the same environment variables the API
server reads (DATABASE_URL, S3_BUCKET, REDIS_URL, ...), so a shared .env
file works for both.

Examples:
  blogctl schema apply
  blogctl users create --name "Ada" --email ada@example.com --admin
  blogctl posts reslug old-title`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			dbURL = cfg.DatabaseURL
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openDB(cmd *cobra.Command) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("--db flag or DATABASE_URL is required")
	}
	return db.Open(cmd.Context(), dbURL)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
