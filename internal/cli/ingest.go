package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/ingest"
)

// Source formats accepted by ingest.
const (
	sourceJSONL  = "jsonl"
	sourceSQLite = "sqlite"
)

type ingestOpts struct {
	owner     string
	source    string
	output    string
	interval  int
	words     bool
	topWords  int
	stopwords bool
	sqlite    ingest.SQLiteOptions
}

// ingestCommand creates the ingest command that turns chat logs into a dataset.
func (c *CLI) ingestCommand() *cobra.Command {
	var opts ingestOpts

	cmd := &cobra.Command{
		Use:   "ingest [log]",
		Short: "Build a dataset from chat logs",
		Long: `Build a dataset from chat logs.

The log is a JSON Lines file of {"from", "to", "date", "body"} objects or a
SQLite database. Every contact of --owner becomes a series; words exchanged
are summed into bins of --interval days.`,
		Example: `  chatstack ingest messages.jsonl --owner me@example.com -o chats.json
  chatstack ingest chat.db --owner me --table msgs --date-column ts --words`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			return c.runIngest(cmd.Context(), args[0], cfg, &opts)
		},
	}

	d := config.Default().Ingest
	cmd.Flags().StringVar(&opts.owner, "owner", "", "account whose conversations are charted")
	cmd.Flags().StringVar(&opts.source, "source", "", "input format: jsonl, sqlite (default: from the file extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "dataset file (default: stdout)")
	cmd.Flags().IntVar(&opts.interval, "interval", d.Interval, "bin width in days")
	cmd.Flags().BoolVar(&opts.words, "words", false, "keep the most common words of every bin for tooltips")
	cmd.Flags().IntVar(&opts.topWords, "top-words", d.TopWords, "words kept per bin")
	cmd.Flags().BoolVar(&opts.stopwords, "stopwords", d.Stopwords, "drop common English words before picking top words")
	cmd.Flags().StringVar(&opts.sqlite.Table, "table", d.SQLite.Table, "sqlite table")
	cmd.Flags().StringVar(&opts.sqlite.From, "from-column", d.SQLite.From, "sqlite sender column")
	cmd.Flags().StringVar(&opts.sqlite.To, "to-column", d.SQLite.To, "sqlite recipient column")
	cmd.Flags().StringVar(&opts.sqlite.Date, "date-column", d.SQLite.Date, "sqlite timestamp column")
	cmd.Flags().StringVar(&opts.sqlite.Body, "body-column", d.SQLite.Body, "sqlite text column")

	return cmd
}

// apply copies the ingest flags the user set onto cfg.
func (o *ingestOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	in := &cfg.Ingest
	if flags.Changed("owner") {
		in.Owner = o.owner
	}
	if flags.Changed("interval") {
		in.Interval = o.interval
	}
	if flags.Changed("words") {
		in.Words = o.words
	}
	if flags.Changed("top-words") {
		in.TopWords = o.topWords
	}
	if flags.Changed("stopwords") {
		in.Stopwords = o.stopwords
	}
	for flag, dst := range map[string]*string{
		"table":       &in.SQLite.Table,
		"from-column": &in.SQLite.From,
		"to-column":   &in.SQLite.To,
		"date-column": &in.SQLite.Date,
		"body-column": &in.SQLite.Body,
	} {
		if flags.Changed(flag) {
			f, _ := flags.GetString(flag)
			*dst = f
		}
	}
}

func (c *CLI) runIngest(ctx context.Context, input string, cfg config.Config, opts *ingestOpts) error {
	if cfg.Ingest.Owner == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--owner is required (or set ingest.owner in the config file)")
	}
	source, err := sourceOf(input, opts.source)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	var msgs []ingest.Message
	switch source {
	case sourceJSONL:
		msgs, err = ingest.ReadJSONLFile(input)
	case sourceSQLite:
		msgs, err = ingest.ReadSQLite(ctx, input, cfg.Ingest.SQLite)
	}
	if err != nil {
		c.Logger.Error("could not read chat log", "source", input, "error", err)
		return reported{err}
	}
	c.Logger.Debug("read messages", "count", len(msgs), "source", source)

	iopts := cfg.IngestOptions()
	iopts.Logger = c.Logger
	ds, err := ingest.Summarize(cfg.Ingest.Owner, msgs, iopts)
	if err != nil {
		return err
	}
	prog.done("Summarized " + filepath.Base(input))

	if opts.output == "" {
		return ds.Write(os.Stdout)
	}
	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := ds.WriteFile(opts.output); err != nil {
		return err
	}
	printSuccess("Wrote dataset")
	printStats(ds.NumSeries(), ds.NumDates(), ds.NumSeries(), false)
	printFile(opts.output)
	printNextStep("Explore it", appName+" serve "+opts.output)
	return nil
}

// sourceOf picks the input format from the flag or the file extension.
func sourceOf(path, flag string) (string, error) {
	switch flag {
	case sourceJSONL, sourceSQLite:
		return flag, nil
	case "":
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown source %q (must be jsonl or sqlite)", flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return sourceSQLite, nil
	}
	return sourceJSONL, nil
}
