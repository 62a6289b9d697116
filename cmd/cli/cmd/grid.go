package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"powersimdata/internal/config"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

func gridCmd() *cobra.Command {
	var (
		source, engine, dataDir, field string
	)
	command := &cobra.Command{
		Use:   "grid <interconnect>...",
		Short: "Summarize a grid, or print one field as CSV.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				dataDir = cfg.GridDataDir
			}
			g, err := grid.New(grid.Options{
				Interconnect: args,
				Source:       source,
				Engine:       engine,
				DataDir:      dataDir,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if field != "" {
				t, err := g.Get(field)
				if err != nil {
					return err
				}
				return model.WriteTableCSV(out, t)
			}
			fmt.Fprintf(out, "interconnect: %s\n", grid.InterconnectName(g.Interconnect))
			fmt.Fprintf(out, "data: %s\n", g.DataLoc)
			for _, name := range g.Fields() {
				t, _ := g.Get(name)
				fmt.Fprintf(out, "%-10s %d\n", name, t.Len())
			}
			zones := make([]string, 0, len(g.Zone2ID()))
			for z := range g.Zone2ID() {
				zones = append(zones, z)
			}
			sort.Strings(zones)
			fmt.Fprintf(out, "zones: %v\n", zones)
			return nil
		},
	}
	command.Flags().StringVar(&source, "source", grid.SourceTAMU, "Grid source: usa_tamu or a .mat case file")
	command.Flags().StringVar(&engine, "engine", grid.EngineREISE, "Engine that wrote the case file")
	command.Flags().StringVar(&dataDir, "data-dir", "", "Directory of the network CSV tables (default grid_data_dir from config)")
	command.Flags().StringVar(&field, "field", "", "Print this field as CSV")
	return command
}
