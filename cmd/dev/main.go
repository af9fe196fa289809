package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"utitriage/app"
	"utitriage/domain/assessment"
	"utitriage/domain/core"
	"utitriage/domain/patient"
	"utitriage/internal"
	"utitriage/internal/config"
	"utitriage/internal/container"
	"utitriage/internal/synthgen"
	"utitriage/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "uti-dev",
		Short:        "Development tools for the UTI risk pipeline",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("demo", false, "use the built-in demo bundle instead of the configured artifacts")

	rootCmd.AddCommand(
		newSmokeTestCmd(),
		newEvaluateCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadPredictor returns the demo predictor or one built from configuration
func loadPredictor(cmd *cobra.Command) (*app.Predictor, func() error, error) {
	logger := internal.NewLogger(internal.LogLevelWarn)
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		p, err := app.NewPredictor(testkit.Set(), logger)
		return p, func() error { return nil }, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Init(cmd.Context()); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("error loading models: %w", err)
	}
	return c.Predictor, c.Close, nil
}

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke tests against the loaded models",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := loadPredictor(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			return runSmokeTests(cmd.Context(), p)
		},
	}
}

func runSmokeTests(ctx context.Context, p *app.Predictor) error {
	fmt.Println("Running smoke tests...")

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"positive_presentation", func(ctx context.Context) error {
			res, err := p.Predict(ctx, testkit.PositiveRecord())
			if err != nil {
				return err
			}
			if !res.Positive() {
				return fmt.Errorf("expected a positive prediction, got p=%.3f", res.Probability)
			}
			return nil
		}},
		{"negative_presentation", func(ctx context.Context) error {
			res, err := p.Predict(ctx, testkit.NegativeRecord())
			if err != nil {
				return err
			}
			if res.Positive() {
				return fmt.Errorf("expected a negative prediction, got p=%.3f", res.Probability)
			}
			return nil
		}},
		{"missing_field_rejected", func(ctx context.Context) error {
			out, err := p.PredictRaw(ctx, testkit.Without(testkit.PositiveMap(), patient.KeyWBC))
			if err != nil {
				return err
			}
			if out.Error != assessment.InvalidInputMessage {
				return fmt.Errorf("expected %q, got %+v", assessment.InvalidInputMessage, out)
			}
			return nil
		}},
		{"recommendation_matches_prediction", func(ctx context.Context) error {
			for _, rec := range []patient.Record{testkit.PositiveRecord(), testkit.NegativeRecord()} {
				res, err := p.Predict(ctx, rec)
				if err != nil {
					return err
				}
				if res.Recommendation.Positive() != res.Positive() {
					return fmt.Errorf("recommendation %q contradicts prediction %d", res.Recommendation, res.Prediction)
				}
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}
	return nil
}

func newEvaluateCmd() *cobra.Command {
	var (
		rows    int
		seed    uint64
		workers int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a synthetic dataset and report accuracy, sensitivity, specificity and AUC",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := loadPredictor(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ev, err := evaluate(cmd.Context(), p, rows, seed, workers)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ev)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records:     %d\n", ev.Records)
			fmt.Fprintf(out, "Accuracy:    %.4f\n", ev.Accuracy)
			fmt.Fprintf(out, "Sensitivity: %.4f\n", ev.Sensitivity)
			fmt.Fprintf(out, "Specificity: %.4f\n", ev.Specificity)
			fmt.Fprintf(out, "AUC:         %.4f\n", ev.AUC)
			fmt.Fprintf(out, "Confusion:   TP=%d FP=%d TN=%d FN=%d\n",
				ev.TruePositives, ev.FalsePositives, ev.TrueNegatives, ev.FalseNegatives)
			for _, r := range assessment.Recommendations() {
				fmt.Fprintf(out, "  %-14s %d\n", r.Risk(), ev.Recommendations[r])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 10000, "number of synthetic records")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent predictions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	return cmd
}

func evaluate(ctx context.Context, p *app.Predictor, rows int, seed uint64, workers int) (*app.Evaluation, error) {
	ds, err := synthgen.Generate(synthgen.Config{Rows: rows, Seed: seed, PositiveShare: 0.5})
	if err != nil {
		return nil, err
	}
	labels := ds.Column(synthgen.LabelColumn)
	cases := make([]app.LabeledRecord, len(ds.Rows))
	for i := range ds.Rows {
		rec, err := ds.Record(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		cases[i] = app.LabeledRecord{Record: rec, Positive: labels[i] == 1}
	}
	return p.Evaluate(ctx, cases, workers)
}

func newDeterminismTestCmd() *cobra.Command {
	var (
		rows int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that a seed reproduces the same dataset and the same scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := loadPredictor(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			return testDeterminism(cmd.Context(), p, rows, seed)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 2000, "number of synthetic records")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "generator seed")
	return cmd
}

func testDeterminism(ctx context.Context, p *app.Predictor, rows int, seed uint64) error {
	fmt.Printf("Testing determinism for seed %d (%d rows)...\n", seed, rows)

	dir, err := os.MkdirTemp("", "uti-determinism")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	var hashes [2]core.Hash
	for i := range hashes {
		ds, err := synthgen.Generate(synthgen.Config{Rows: rows, Seed: seed, PositiveShare: 0.5})
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("run%d.csv", i))
		if err := synthgen.WriteCSV(path, ds); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hashes[i] = core.NewHash(data)
	}
	if hashes[0] != hashes[1] {
		return fmt.Errorf("determinism test failed: dataset hashes differ: %s vs %s", hashes[0].Short(), hashes[1].Short())
	}
	fmt.Printf("Dataset hash: %s\n", hashes[0].Short())

	first, err := evaluate(ctx, p, rows, seed, 1)
	if err != nil {
		return err
	}
	second, err := evaluate(ctx, p, rows, seed, 8)
	if err != nil {
		return err
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		return fmt.Errorf("determinism test failed: evaluations differ between sequential and concurrent scoring")
	}

	fmt.Println("✓ Determinism test passed - results identical")
	return nil
}
