package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

func exportCmd() *cobra.Command {
	var outDir string
	var withProfiles bool
	command := &cobra.Command{
		Use:   "export <scenario>",
		Short: "Write the grid of a scenario as a REISE case file and CSV tables.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Scenarios.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := s.Grid(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(err, "failed to create output directory")
			}
			id := s.Record().ID
			if err := grid.WriteREISE(g, filepath.Join(outDir, id+"_case.mat")); err != nil {
				return err
			}
			for _, name := range g.Fields() {
				t, _ := g.Get(name)
				if err := model.WriteTableCSVFile(filepath.Join(outDir, id+"_"+name+".csv"), t); err != nil {
					return err
				}
			}
			if withProfiles {
				for _, field := range data.ProfileFields {
					p, err := s.Profile(cmd.Context(), field)
					if err != nil {
						return err
					}
					f, err := os.Create(filepath.Join(outDir, data.FileName(id, field)))
					if err != nil {
						return errors.Wrap(err, "failed to create profile file")
					}
					if err := model.WriteProfileCSV(f, p); err != nil {
						f.Close()
						return err
					}
					if err := f.Close(); err != nil {
						return err
					}
				}
			}
			log.WithFields(log.Fields{"scenario": id, "dir": outDir}).Info("Scenario exported")
			return nil
		},
	}
	command.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	command.Flags().BoolVar(&withProfiles, "profiles", false, "Also write the input profiles")
	return command
}
