package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export one row per annotated action to a Parquet file.",
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
		if err != nil {
			return err
		}
		rows, err := collectActionRows(p, LogWarn)
		if err != nil {
			return err
		}
		if err := WriteActionRowsParquet(rows, out); err != nil {
			return err
		}
		logInfo(os.Stdout, "wrote %d actions to %s", len(rows), out)
		return nil
	},
}

// ActionRow is the exported summary of one annotated action.
type ActionRow struct {
	DemoIndex   int32  `parquet:"demo_index,snappy"`
	Benchmark   string `parquet:"benchmark,snappy"`
	VideoPath   string `parquet:"video_path,snappy"`
	Task        string `parquet:"task,snappy"`
	ActionIndex int32  `parquet:"action_index,snappy"`
	Label       string `parquet:"label,snappy"`

	// Actors and Objects are comma-separated.
	Actors  string `parquet:"actors,snappy"`
	Objects string `parquet:"objects,snappy"`

	StartTimestamp float64 `parquet:"start_timestamp,snappy"`
	EndTimestamp   float64 `parquet:"end_timestamp,snappy"`
	FPS            int32   `parquet:"fps,snappy"`
	StartFrame     int32   `parquet:"start_frame,snappy"`
	EndFrame       int32   `parquet:"end_frame,snappy"`

	// NumFrames is the number of joint frames actually available, which is
	// less than EndFrame-StartFrame when the annotation overruns the record.
	NumFrames int32 `parquet:"num_frames,snappy"`

	LeftVisibility  float64 `parquet:"left_visibility,snappy"`
	RightVisibility float64 `parquet:"right_visibility,snappy"`
	HasIntrinsic    bool    `parquet:"has_intrinsic"`
}

// collectActionRows summarizes every action of the corpus. p must load
// joints and annotation. EgoDex demonstrations have no annotations and are
// reported through warn.
func collectActionRows(p *datasets.Provider, warn func(string, error)) ([]ActionRow, error) {
	var rows []ActionRow
	skipped := 0
	for _, d := range p.Index().Demos {
		if d.Benchmark.Kind == benchmarks.EgoDex {
			skipped++
			continue
		}
		s, err := p.Get(d.Index, nil)
		if err != nil {
			return nil, err
		}
		actions, err := p.Actions(s)
		if err != nil {
			return nil, err
		}
		for i, a := range actions {
			seg, err := a.Joints()
			if err != nil {
				return nil, fmt.Errorf("action %d of demo %d: %w", i, d.Index, err)
			}
			rows = append(rows, ActionRow{
				DemoIndex:       int32(d.Index),
				Benchmark:       d.Benchmark.ID,
				VideoPath:       d.VideoPath,
				Task:            s.Annotation.Task,
				ActionIndex:     int32(i),
				Label:           a.Label,
				Actors:          strings.Join(a.Actors, ","),
				Objects:         strings.Join(a.Objects, ","),
				StartTimestamp:  a.StartTimestamp,
				EndTimestamp:    a.EndTimestamp,
				FPS:             int32(a.FPS),
				StartFrame:      int32(a.StartFrame()),
				EndFrame:        int32(a.EndFrame()),
				NumFrames:       int32(min(seg.LeftHand.Len(), seg.RightHand.Len())),
				LeftVisibility:  mean(seg.LeftHandVisibility),
				RightVisibility: mean(seg.RightHandVisibility),
				HasIntrinsic:    seg.Intrinsic != nil,
			})
		}
	}
	if skipped > 0 && warn != nil {
		warn("skipped demonstrations", fmt.Errorf("%d %s demonstrations have no annotation support", skipped, benchmarks.EgoDexID))
	}
	return rows, nil
}

func mean(a *ndarray.Array[float64]) float64 {
	if a == nil || a.Size() == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.Data() {
		sum += v
	}
	return sum / float64(a.Size())
}

// WriteActionRowsParquet writes rows to a Parquet file.
func WriteActionRowsParquet(rows []ActionRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ActionRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
