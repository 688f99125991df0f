// Command calculate computes nutrition for every recipe in the store and writes it back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/recipelens/backend/config"
	"github.com/recipelens/backend/internal/app"
	"github.com/recipelens/backend/internal/usecase"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "calculate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("calculate", pflag.ContinueOnError)
	flags.String("config", "", "path to config file")
	flags.String("recipes", "", "recipes JSON file (overrides storage.recipes_path)")
	flags.String("storage", "", "recipe store: file or sqlite (overrides storage.type)")
	flags.String("table", "", "reference table YAML (overrides nutrition.reference_table)")
	flags.Int("workers", 0, "parallel recipes (overrides nutrition.workers)")
	flags.String("log-level", "", "log level (overrides log.level)")
	dryRun := flags.Bool("dry-run", false, "compute and report without saving")
	asJSON := flags.Bool("json", false, "print the batch report as JSON")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	if err := config.BindFlags(v, flags, map[string]string{
		"config":    "config",
		"recipes":   "storage.recipes_path",
		"storage":   "storage.type",
		"table":     "nutrition.reference_table",
		"workers":   "nutrition.workers",
		"log-level": "log.level",
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	recipes, err := a.Recipes.LoadRecipes(ctx)
	if err != nil {
		return err
	}

	report, err := a.Nutrition.CalculateAll(ctx, recipes)
	if err != nil {
		return err
	}
	report.Apply(recipes)

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if *dryRun {
		return nil
	}
	if err := a.Recipes.SaveRecipes(ctx, recipes); err != nil {
		return fmt.Errorf("failed to save recipes: %w", err)
	}
	a.Logger.Info("recipes saved", zap.Int("updated", report.Updated))
	if !*asJSON {
		fmt.Fprintf(out, "saved %d recipes\n", len(recipes))
	}
	return nil
}

// printReport writes one block per recipe followed by the updated count
func printReport(w io.Writer, report *usecase.BatchReport) {
	total := len(report.Results)
	fmt.Fprintf(w, "calculating nutrition for %d recipes\n", total)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for _, r := range report.Results {
		fmt.Fprintf(w, "\n[%d/%d] %s\n", r.Index+1, total, r.Title)
		if r.Nutrition == nil {
			fmt.Fprintln(w, "  no ingredients, skipped")
			continue
		}
		n := r.Nutrition
		fmt.Fprintf(w, "  calories: %.1f kcal\n", n.EnergyKcal)
		fmt.Fprintf(w, "  protein:  %.1f g\n", n.ProteinG)
		fmt.Fprintf(w, "  carbs:    %.1f g\n", n.CarbsG)
		fmt.Fprintf(w, "  fat:      %.1f g\n", n.FatG)
		fmt.Fprintf(w, "  salt:     %.2f g\n", n.SaltG)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  warning: %s: %s\n", d.Ingredient, d.Message)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintf(w, "updated %d recipes, skipped %d\n", report.Updated, report.Skipped)
}
