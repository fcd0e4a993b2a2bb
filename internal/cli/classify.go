package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vedant281104/AgriShield/internal/pest"
)

func (a *App) classifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Identify the pest in an image and print the advisory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			clf, err := a.classifier(cmd.Context())
			if err != nil {
				return err
			}

			res, err := clf.Classify(cmd.Context(), data)
			if err != nil {
				return err
			}

			advisory := pest.DefaultCatalog().Lookup(res.Label)
			out := cmd.OutOrStdout()

			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"label":              res.Label.String(),
					"confidence_percent": res.ConfidencePercent(),
					"advisory":           advisory,
				})
			}

			fmt.Fprintf(out, "Pest: %s\nConfidence: %.2f%%\nAdvisory: %s\n", res.Label, res.ConfidencePercent(), advisory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (a *App) labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the pests the models know about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range pest.DefaultCatalog().Entries() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", int(e.Label), e.Label, e.Advisory)
			}
			return w.Flush()
		},
	}
}
