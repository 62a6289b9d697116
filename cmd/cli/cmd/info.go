package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"powersimdata/internal/analysis"
)

func infoCmd() *cobra.Command {
	var area, start, end string
	command := &cobra.Command{
		Use:   "info <scenario>",
		Short: "Print demand and per-resource statistics of an area of a scenario.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseWindow(start, end)
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Scenarios.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			info, err := analysis.NewScenarioInfo(cmd.Context(), s)
			if err != nil {
				return err
			}
			demand, err := info.Demand(area, from, to)
			if err != nil {
				return err
			}
			ranked, err := info.RankResources(area, from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rec := info.Record
			fmt.Fprintf(out, "scenario: %s (%s)\n", rec.ID, rec.FullName())
			fmt.Fprintf(out, "area: %s\n", area)
			fmt.Fprintf(out, "demand: %.2f MWh\n\n", demand)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tCAPACITY (MW)\tGENERATION (MWh)\tCAPACITY FACTOR\tCURTAILMENT")
			for _, r := range ranked {
				curtailment := "-"
				if r.Curtailment != nil {
					curtailment = strconv.FormatFloat(*r.Curtailment, 'f', 4, 64)
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.4f\t%s\n", r.Type, r.Capacity, r.Generation, r.CapacityFactor, curtailment)
			}
			return w.Flush()
		},
	}
	command.Flags().StringVar(&area, "area", analysis.AreaAll, "Load zone, interconnect or all")
	command.Flags().StringVar(&start, "start", "", "First timestamp (inclusive)")
	command.Flags().StringVar(&end, "end", "", "Last timestamp (inclusive)")
	return command
}
