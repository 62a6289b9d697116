package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"powersimdata/internal/app"
	"powersimdata/internal/config"
	"powersimdata/internal/data"
)

func main() {
	var (
		cfgPath = flag.String("config", os.Getenv("PSD_CONFIG"), "Path to YAML config")
		fields  = flag.String("fields", "", "Comma separated input fields (default: all)")
		state   = flag.String("state", "", "Sync every scenario in this state instead of the listed ones")
		output  = flag.Bool("output", false, "Also fetch the PG result of each scenario")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	a, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up services")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	list, err := a.Scenarios.List(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to load scenario list")
	}
	var records []data.ScenarioRecord
	if *state != "" {
		for _, r := range list.Records {
			if r.State == *state {
				records = append(records, r)
			}
		}
	}
	for _, key := range flag.Args() {
		r, err := list.Find(key)
		if err != nil {
			log.WithError(err).Fatal("Unknown scenario")
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		log.Fatal("no scenarios given: pass scenario ids or names, or -state")
	}

	var want []string
	if *fields != "" {
		want = strings.Split(*fields, ",")
	}

	failed := 0
	for _, r := range records {
		errs := a.Input.Prefetch(ctx, r.ID, want...)
		if *output {
			_, errs[data.FieldPG] = a.Output.GetProfile(ctx, r.ID, data.FieldPG)
		}
		names := make([]string, 0, len(errs))
		for f := range errs {
			names = append(names, f)
		}
		sort.Strings(names)
		for _, f := range names {
			entry := log.WithFields(log.Fields{"scenario": r.ID, "field": f})
			if errs[f] != nil {
				failed++
				entry.WithError(errs[f]).Warn("Sync failed")
				continue
			}
			entry.Info("Synced")
		}
	}
	log.Infof("Synced %d scenarios into %s (%d failures)", len(records), a.Input.LocalDir(), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
