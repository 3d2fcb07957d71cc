// Command fdw-scan drives one foreign table through the host callback
// surface and prints every produced row. It stands in for a query executor
// when developing or debugging a source.
//
//	fdw-scan -config table.yaml
//	fdw-scan -config table.yaml -output csv > rows.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/fdw/internal/config"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/host"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/scan"
)

func main() {
	cfgPath := flag.String("config", "fdw.yaml", "path to the table config")
	output := flag.String("output", "", "row format, json or csv (overrides config)")
	rescan := flag.Bool("rescan", false, "rewind after the first pass and print the rows again")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfgPath, *output, *rescan, os.Stdout); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, output string, rescan bool, stdout io.Writer) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Output = output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	adapter := host.New(ctx, scan.New(b.src, scan.WithLogger(log)))
	c := cfg.Context(b.columns)

	log.InfoWith("scanning", map[string]interface{}{
		"source":       b.src.Name(),
		"columns":      len(b.columns),
		"host_version": adapter.HostVersionRequirement(),
	})

	w := newRowWriter(cfg.Output, stdout)
	if err := w.WriteHeader(b.columns); err != nil {
		return err
	}

	if res := adapter.Init(c); res.Failed() {
		return res.Err
	}
	if res := adapter.BeginScan(c); res.Failed() {
		return res.Err
	}
	defer adapter.EndScan(c)

	n, err := drain(adapter, c, w)
	if err != nil {
		return err
	}
	if rescan {
		if res := adapter.ReScan(c); res.Failed() {
			return res.Err
		}
		m, err := drain(adapter, c, w)
		if err != nil {
			return err
		}
		n += m
	}

	if err := w.Flush(); err != nil {
		return err
	}
	log.InfoWith("scan complete", map[string]interface{}{"rows": n})
	return nil
}

// drain calls IterScan until the source reports no more rows.
func drain(a *host.Adapter, c *fdw.Context, w rowWriter) (int, error) {
	n := 0
	for {
		row := fdw.NewRow(len(c.Columns()))
		res := a.IterScan(c, row)
		switch res.Status {
		case host.NoMoreRows:
			return n, nil
		case host.IterError:
			return n, fmt.Errorf("row %d: %w", n+1, res.Err)
		}
		if err := w.WriteRow(c.Columns(), row); err != nil {
			return n, err
		}
		n++
	}
}
