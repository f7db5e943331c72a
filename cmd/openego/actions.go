package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Noofbiz/openego/datasets"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:     "actions <index>",
	Short:   "List the annotated actions of one demonstration.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid demonstration index %q: %w", args[0], err)
		}
		p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
		if err != nil {
			return err
		}
		actions, err := loadActions(p, idx)
		if err != nil {
			return err
		}
		return printActions(os.Stdout, actions)
	},
}

// loadActions loads joints and annotation of demonstration idx and returns
// its action views.
func loadActions(p *datasets.Provider, idx int) ([]*datasets.Action, error) {
	s, err := p.Get(idx, nil)
	if err != nil {
		return nil, err
	}
	return p.Actions(s)
}

// printActions writes one row per action with its time and frame bounds.
func printActions(w io.Writer, actions []*datasets.Action) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Action", "Start(s)", "End(s)", "Start Frame", "End Frame", "Actors", "Objects", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, a := range actions {
		data = append(data, []string{
			strconv.Itoa(i),
			strconv.FormatFloat(a.StartTimestamp, 'f', 2, 64),
			strconv.FormatFloat(a.EndTimestamp, 'f', 2, 64),
			strconv.Itoa(a.StartFrame()),
			strconv.Itoa(a.EndFrame()),
			strings.Join(a.Actors, ", "),
			strings.Join(a.Objects, ", "),
			a.Label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
