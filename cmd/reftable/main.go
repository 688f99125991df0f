// Command reftable validates reference tables and drafts new entries from USDA FoodData Central.
//
//	reftable check [--table path]
//	reftable import --query "name" [--query "name" ...]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recipelens/backend/config"
	"github.com/recipelens/backend/internal/app"
	"github.com/recipelens/backend/internal/domain"
	"github.com/recipelens/backend/internal/infrastructure/reftable"
	"github.com/recipelens/backend/internal/pkg/logger"
)

const usage = `usage:
  reftable check [--table path]
  reftable import --query name [--query name ...] [--skip-known]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "reftable: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "check":
		return runCheck(args[1:], out)
	case "import":
		return runImport(ctx, args[1:], out, errOut)
	default:
		fmt.Fprint(errOut, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runCheck(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("check", pflag.ContinueOnError)
	path := flags.String("table", "", "reference table YAML (built-in table when empty)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	table, err := reftable.Load(*path)
	if err != nil {
		return err
	}

	source := *path
	if source == "" {
		source = "built-in"
	}
	fmt.Fprintf(out, "%s: %d entries\n", source, table.Len())

	units := table.InformalUnits()
	sort.Strings(units)
	for _, u := range units {
		fmt.Fprintf(out, "  %s: %d entries\n", u, len(table.InformalEntries(u)))
	}
	return nil
}

func runImport(ctx context.Context, args []string, out, errOut io.Writer) error {
	flags := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flags.String("config", "", "path to config file")
	flags.String("table", "", "reference table YAML (overrides nutrition.reference_table)")
	flags.Float64("min-confidence", 0, "minimum match score (overrides usda.min_confidence)")
	queries := flags.StringArray("query", nil, "ingredient name to look up (repeatable)")
	skipKnown := flags.Bool("skip-known", false, "skip names already in the reference table")
	if err := flags.Parse(args); err != nil {
		return err
	}
	names := append(append([]string{}, *queries...), flags.Args()...)
	if len(names) == 0 {
		return errors.New("at least one --query is required")
	}

	v := viper.New()
	if err := config.BindFlags(v, flags, map[string]string{
		"config":         "config",
		"table":          "nutrition.reference_table",
		"min-confidence": "usda.min_confidence",
	}); err != nil {
		return err
	}
	if err := config.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewWithSink(cfg.Log.Level, "console", zapSink(errOut))
	if err != nil {
		return err
	}
	a, err := app.NewWithLogger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	importer, err := a.NewImportService()
	if err != nil {
		return err
	}

	var drafted []domain.ReferenceEntry
	for _, name := range names {
		if *skipKnown {
			if _, ok := a.Table.Primary(name); ok {
				fmt.Fprintf(errOut, "# %s: already in table, skipped\n", name)
				continue
			}
		}

		entry, err := importer.ImportIngredient(ctx, name)
		switch {
		case errors.Is(err, domain.ErrLowConfidence) && entry != nil:
			fmt.Fprintf(errOut, "# %s: best match %q scored %.0f, below threshold, skipped\n",
				name, entry.Match.Description, entry.Match.MatchScore)
			continue
		case errors.Is(err, domain.ErrProductNotFound):
			fmt.Fprintf(errOut, "# %s: no USDA match\n", name)
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("import failed", zap.String("ingredient", name), zap.Error(err))
			fmt.Fprintf(errOut, "# %s: %v\n", name, err)
			continue
		}

		fmt.Fprintf(errOut, "# %s: fdc %d %q (score %.0f)\n",
			entry.Name, entry.Match.FdcID, entry.Match.Description, entry.Match.MatchScore)
		drafted = append(drafted, domain.ReferenceEntry{Name: entry.Name, Record: entry.Record})
	}

	if len(drafted) == 0 {
		return errors.New("no entries drafted")
	}
	data, err := reftable.Encode(drafted)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func zapSink(w io.Writer) zapcore.WriteSyncer {
	if ws, ok := w.(zapcore.WriteSyncer); ok {
		return zapcore.Lock(ws)
	}
	return zapcore.AddSync(w)
}
