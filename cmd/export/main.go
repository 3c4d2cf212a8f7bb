// Command export runs the ADR pipeline once and writes the imputed month
// grid for a segment to an xlsx file, without starting the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/stayops/revdash/internal/cache"
	"github.com/stayops/revdash/internal/config"
	"github.com/stayops/revdash/internal/domain"
	"github.com/stayops/revdash/internal/service"
	"github.com/stayops/revdash/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "export",
		Usage: "export the imputed ADR month grid for one property segment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ledger", Usage: "path to the reservations xlsx snapshot"},
			&cli.StringFlag{Name: "registry", Usage: "path to the property registry xlsx"},
			&cli.StringFlag{Name: "period", Required: true, Usage: "analysis month as MM/YYYY"},
			&cli.StringFlag{Name: "category", Required: true, Usage: "property category (Economy, Comfort, Superior, Premium)"},
			&cli.StringFlag{Name: "zone", Required: true, Usage: "property zone"},
			&cli.IntFlag{Name: "rooms", Required: true, Usage: "room count of the segment"},
			&cli.StringFlag{Name: "out", Usage: "output directory (defaults to the configured export dir)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("export failed")
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()

	data := cfg.Data
	if v := c.String("ledger"); v != "" {
		data.LedgerPath = v
	}
	if v := c.String("registry"); v != "" {
		data.RegistryPath = v
	}
	if v := c.String("out"); v != "" {
		data.ExportDir = v
	}

	period, err := domain.ParsePeriod(c.String("period"))
	if err != nil {
		return err
	}

	seg := domain.Segment{
		Category: domain.Category(strings.TrimSpace(c.String("category"))),
		Zone:     strings.TrimSpace(c.String("zone")),
		Rooms:    c.Int("rooms"),
	}
	if _, ok := seg.Category.Ordinal(); !ok {
		return fmt.Errorf("unknown category %q", c.String("category"))
	}

	svc := service.NewAnalysisService(data, cache.NewMemoryCache())
	path, err := svc.Export(context.Background(), period, seg)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
