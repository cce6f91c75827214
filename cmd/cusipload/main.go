// Command cusipload loads CUSIP PIP files into PostgreSQL from local files,
// a local directory or an S3 bucket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/core/tables"
	"github.com/JonMunkholm/cusip/internal/logging"
	"github.com/JonMunkholm/cusip/internal/secrets"
	"github.com/JonMunkholm/cusip/internal/source"
)

const examples = `  # Load local files
  cusipload /data/CED01-15R.PIP --dbname cusip --user cusip_app

  # Load a directory by date
  cusipload --dir /data/pif_files --date 2024-01-15 --database-url postgres://...

  # Load from S3 by date (uses AWS_PROFILE if set)
  cusipload --s3-bucket cusip-pip-files --date 2024-01-15 --dbname cusip --user cusip_app

  # Load a specific S3 object
  cusipload --s3-bucket cusip-pip-files --s3-key pip/CED01-15R.PIP --type issuer --db-secret-id prod/cusip`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	env, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}

	opts := &options{}
	var failed bool

	cmd := &cobra.Command{
		Use:          "cusipload [files...]",
		Short:        "Load CUSIP PIP files into PostgreSQL",
		Example:      examples,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.files = args
			m, err := opts.validate()
			if err != nil {
				cmd.SilenceUsage = false
				return err
			}

			logging.SetupWriter(os.Stderr, opts.logLevel, opts.logFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := run(ctx, opts, m, env)
			if len(results) > 0 {
				writeSummary(cmd.OutOrStdout(), results)
			}
			if err != nil {
				return err
			}
			failed = !core.Succeeded(results)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fileType, "type", "", "file type: issuer, issue or issue_attr (auto-detected from suffix if not set)")
	f.StringVar(&opts.s3Bucket, "s3-bucket", "", "S3 bucket holding PIP files")
	f.StringVar(&opts.s3Key, "s3-key", "", "specific S3 key to load (use with --s3-bucket)")
	f.StringVar(&opts.s3Prefix, "s3-prefix", env.Source.S3Prefix, "S3 key prefix for PIP files")
	f.StringVar(&opts.s3Region, "s3-region", env.Source.S3Region, "AWS region for the bucket")
	f.StringVar(&opts.s3Endpoint, "s3-endpoint", env.Source.S3Endpoint, "S3-compatible endpoint URL")
	f.StringVar(&opts.dir, "dir", "", "local directory to search for a date's files")
	f.StringVar(&opts.prefix, "prefix", env.Source.Prefix, "file name prefix before MM-DD")
	f.StringVar(&opts.date, "date", "", "business date to load (YYYY-MM-DD)")

	f.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL")
	f.StringVar(&opts.host, "host", "localhost", "database host")
	f.IntVar(&opts.port, "port", 5432, "database port")
	f.StringVar(&opts.dbname, "dbname", "", "database name")
	f.StringVar(&opts.user, "user", "", "database user")
	f.StringVar(&opts.password, "password", "", "database password")
	f.StringVar(&opts.secretID, "db-secret-id", "", "AWS Secrets Manager secret with RDS credentials")

	f.StringVar(&opts.logLevel, "log-level", env.Logging.Level, "log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", env.Logging.Format, "log format: text or json")

	if err := cmd.Execute(); err != nil {
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

// run connects to the database and loads according to m.
func run(ctx context.Context, opts *options, m mode, env *config.Config) ([]core.LoadResult, error) {
	dbURL, secretID, err := opts.database(env.Database)
	if err != nil {
		return nil, err
	}
	dbURL, err = secrets.ResolveDatabaseURL(ctx, dbURL, secretID, env.AWS.Region)
	if err != nil {
		return nil, err
	}

	registry, err := tables.Registry()
	if err != nil {
		return nil, err
	}

	store, err := core.Connect(ctx, dbURL, core.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, err
	}
	defer store.Close()

	loader := core.NewLoader(registry, store)

	switch m {
	case modeFiles:
		return loadFiles(ctx, loader, opts)

	case modeS3Key:
		kind, err := opts.kindFor(opts.s3Key)
		if err != nil {
			return nil, err
		}
		src, err := source.NewS3(opts.sourceConfig(), env.AWS.Region)
		if err != nil {
			return nil, err
		}
		loc := source.S3Object(opts.s3Bucket, opts.s3Key)
		return []core.LoadResult{loader.LoadLocation(ctx, kind, loc, src)}, nil
	}

	src, err := source.New(opts.sourceConfig(), env.AWS.Region)
	if err != nil {
		return nil, err
	}
	date, err := source.ParseDate(opts.date)
	if err != nil {
		return nil, err
	}
	files, err := src.FindFilesForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return loader.LoadAll(ctx, files, src), nil
}

// loadFiles loads explicit local files in the order given. Every file is
// checked before the first load starts.
func loadFiles(ctx context.Context, loader *core.Loader, opts *options) ([]core.LoadResult, error) {
	kinds := make([]core.FileKind, len(opts.files))
	for i, p := range opts.files {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("file not found: %s", p)
		}
		kind, err := opts.kindFor(filepath.Base(p))
		if err != nil {
			return nil, err
		}
		kinds[i] = kind
	}

	src := source.NewLocal(filepath.Dir(opts.files[0]), opts.prefix)
	results := make([]core.LoadResult, 0, len(opts.files))
	for i, p := range opts.files {
		results = append(results, loader.LoadLocation(ctx, kinds[i], source.LocalFile(p), src))
	}
	return results, nil
}
