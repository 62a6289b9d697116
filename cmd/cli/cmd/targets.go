package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"powersimdata/internal/analysis"
	"powersimdata/internal/design"
)

func targetsCmd() *cobra.Command {
	var scenarioKey string
	command := &cobra.Command{
		Use:   "targets <planning.csv>",
		Short: "Compute clean energy targets and shortfalls from a planning table.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sm := design.NewStrategyManager()
			if err := sm.TargetsFromFile(args[0]); err != nil {
				return err
			}
			if scenarioKey != "" {
				a, err := loadApp()
				if err != nil {
					return err
				}
				defer a.Close()
				s, err := a.Scenarios.Open(cmd.Context(), scenarioKey)
				if err != nil {
					return err
				}
				info, err := analysis.NewScenarioInfo(cmd.Context(), s)
				if err != nil {
					return err
				}
				if err := sm.PopulateFromScenario(info); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REGION\tCATEGORY\tTARGET\tCE GENERATION\tSHORTFALL\tSOLAR\tWIND")
			for _, region := range sm.Regions() {
				t := sm.Targets[region]
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", t.RegionName, t.CECategory,
					t.Target(), t.CEGeneration, t.Shortfall(), t.SolarShortfall(), t.WindShortfall())
			}
			fmt.Fprintf(w, "total (%s)\t\t\t\t%.2f\t\t\n", sm.Strategy, sm.TotalShortfall())
			return w.Flush()
		},
	}
	command.Flags().StringVar(&scenarioKey, "scenario", "", "Scenario whose generation counts towards the targets")
	return command
}
