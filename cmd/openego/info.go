package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Noofbiz/openego/datasets"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:     "info",
	Short:   "List the demonstrations of a corpus.",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		p, err := newProvider(cfg)
		if err != nil {
			return err
		}
		return printInfo(os.Stdout, p, cfg.Root)
	},
}

// printInfo writes one row per demonstration followed by corpus totals.
func printInfo(w io.Writer, p *datasets.Provider, root string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Index", "Benchmark", "Frames", "FPS", "Duration(s)", "Size", "Video"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, d := range p.Index().Demos {
		data = append(data, []string{
			strconv.Itoa(d.Index),
			d.Benchmark.ID,
			strconv.Itoa(d.Info.FrameCount),
			strconv.Itoa(d.Info.FPS),
			strconv.FormatFloat(d.Info.Duration, 'f', 2, 64),
			strconv.Itoa(d.Info.Width) + "x" + strconv.Itoa(d.Info.Height),
			relPath(root, d.VideoPath),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	logInfo(w, "%d demonstrations, %d frames, %.1fs across %s",
		p.Len(), p.NumFrames(), p.Duration(), strings.Join(p.Benchmarks(), ", "))
	return nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
