package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"utitriage/domain/assessment"
	"utitriage/domain/patient"
	"utitriage/internal/intake"

	"github.com/spf13/cobra"
)

func newAssessCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Answer questions about a patient and print the risk assessment",
		Long: `Collect a patient's data interactively and score it.

Without --mode the mode menu is shown. Basic mode asks about five core symptoms
and fills the remaining fields with neutral values; detailed mode asks for everything.

Example: uti-cli assess --mode detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			prompter := intake.NewPrompter(cmd.InOrStdin(), out)

			var m intake.Mode
			if mode == "" {
				if m, err = prompter.ChooseMode(); err != nil {
					return err
				}
			} else if m, err = intake.ParseMode(mode); err != nil {
				return err
			}

			rec, err := prompter.Collect(m)
			if err != nil {
				return fmt.Errorf("an error occurred: %w", err)
			}

			res, err := c.Predictor.Predict(cmd.Context(), rec)
			if err != nil {
				fmt.Fprintln(out, assessment.ScoringFailureMessage)
				return err
			}
			return res.WriteReport(out)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Input mode: basic|detailed (default: ask)")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a patient record read from a JSON file",
		Long: `Score a JSON object holding the 18 patient features and print the outcome as JSON.

A record with missing or invalid fields prints {"error": "Invalid input data"}.

Example: uti-cli predict --file patient.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRecord(cmd, file)
			if err != nil {
				return err
			}

			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			outcome, scoreErr := c.Predictor.PredictRaw(cmd.Context(), raw)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(outcome); err != nil {
				return err
			}
			return scoreErr
		},
	}

	cmd.Flags().StringVar(&file, "file", "-", "JSON record to score, - for stdin")
	return cmd
}

func readRecord(cmd *cobra.Command, file string) (map[string]any, error) {
	in := cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return raw, nil
}

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List the features the models expect, in input order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "#\tNAME\tLABEL\tTYPE\tBASIC\n")
			basic := map[string]bool{}
			for _, q := range intake.Questions(intake.ModeBasic) {
				basic[q.Key] = true
			}
			for i, name := range patient.FeatureOrder {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", i, name, patient.Label(name), featureType(name), basic[name])
			}
			fmt.Fprintf(w, "\ncontract %s\n", patient.ContractVersion)
			return w.Flush()
		},
	}
}

func featureType(name string) string {
	switch {
	case name == patient.KeyGender:
		return "M|F"
	case name == patient.KeyAge:
		return "years (scaled)"
	case patient.IndexOf(name) < len(patient.NumericFeatures):
		return "number (scaled)"
	}
	return "0|1"
}
