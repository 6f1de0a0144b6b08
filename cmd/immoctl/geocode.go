package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"immodash/internal/adapters/nominatim"
	"immodash/internal/domain"
	"immodash/internal/geo"
	"immodash/internal/normalize"
)

var geocodeWorkers int

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Geocoding cache maintenance",
}

var geocodeWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Resolve every listing address and fill the geocode cache",
	Long: `Walks the current listings, resolves each distinct address through the
fallback chain and stores the answers in Redis so map requests stay cache-only.

Examples:
  immoctl geocode warm
  immoctl geocode warm --workers 8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := open(ctx)
		if err != nil {
			return err
		}
		defer e.Close()
		snaps, err := e.snapshots()
		if err != nil {
			return err
		}
		snap, err := snaps.Snapshot(ctx)
		if err != nil {
			return err
		}

		client := nominatim.New(cfg.GeocoderURL, cfg.GeocoderEmail, cfg.GeocoderRPS)
		resolver := geo.NewResolver(client, geo.WithCache(e.cache.Named("geo")))

		// one representative per address; the rest share its cache entry
		todo := map[string]domain.Property{}
		for _, p := range snap.Properties {
			if p.Coordinates != nil {
				continue
			}
			key := normalize.Fold(p.Quartier) + "|" + normalize.Fold(p.Commune) + "|" + normalize.Fold(p.Zone)
			if _, ok := todo[key]; !ok {
				todo[key] = p
			}
		}

		workers := geocodeWorkers
		if workers <= 0 {
			workers = cfg.GeocodeWorkers
		}
		log.Info().Int("addresses", len(todo)).Int("workers", workers).Msg("geocode warm-up starting")

		sem := semaphore.NewWeighted(int64(workers))
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			steps = map[geo.Step]int{}
		)
		for _, p := range todo {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func(p domain.Property) {
				defer wg.Done()
				defer sem.Release(1)

				_, step := resolver.ResolveStep(ctx, p)
				mu.Lock()
				steps[step]++
				mu.Unlock()
				log.Debug().Str("commune", p.Commune).Str("quartier", p.Quartier).Str("step", string(step)).Msg("resolved")
			}(p)
		}
		wg.Wait()

		names := make([]string, 0, len(steps))
		for s := range steps {
			names = append(names, string(s))
		}
		sort.Strings(names)
		for _, s := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-9s %d\n", s, steps[geo.Step(s)])
		}
		return ctx.Err()
	},
}

func init() {
	geocodeWarmCmd.Flags().IntVar(&geocodeWorkers, "workers", 0, "concurrent lookups (default GEOCODE_WORKERS)")
	geocodeCmd.AddCommand(geocodeWarmCmd)
}
