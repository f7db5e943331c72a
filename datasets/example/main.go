package main

// Example command that indexes a corpus, loads one demonstration lazily,
// walks its annotated actions and converts a small batch of action windows
// into gomlx tensors.
//
// Nothing but video headers is read while indexing; joints, annotations,
// metadata and frames are read from disk on every Get.
//
// Usage:
//   go run ./datasets/example /data/openego
//
// ffprobe and ffmpeg must be on PATH.

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/schema"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <corpus root>", os.Args[0])
	}

	p, err := datasets.NewProvider(os.Args[1], datasets.Options{
		Modalities: []datasets.Modality{datasets.Joint, datasets.Annotation, datasets.Metadata},
	})
	if err != nil {
		log.Fatalf("failed to index corpus: %v", err)
	}
	fmt.Printf("Indexed %d demonstrations (%d frames, %.1fs) from %v\n",
		p.Len(), p.NumFrames(), p.Duration(), p.Benchmarks())

	// Find the first demonstration that has annotations.
	var sample *datasets.Sample
	for i := 0; i < p.Len(); i++ {
		s, err := p.Get(i, nil)
		if errors.Is(err, schema.ErrNotImplemented) {
			continue
		}
		if err != nil {
			log.Fatalf("failed to load demo %d: %v", i, err)
		}
		sample = s
		break
	}
	if sample == nil {
		fmt.Println("No annotated demonstrations found")
		return
	}
	fmt.Printf("Demo %d (%s): %q\n", sample.Index, sample.Demo.Benchmark, sample.Annotation.Task)
	fmt.Printf("  Left hand joints: %v\n", sample.Joints.LeftHand.Shape())

	actions, err := p.Actions(sample)
	if err != nil {
		log.Fatalf("failed to build actions: %v", err)
	}
	for i, a := range actions {
		fmt.Printf("  Action %d [%d:%d] %s\n", i, a.StartFrame(), a.EndFrame(), a.Label)
		px, err := a.LeftHandPixelJoints()
		switch {
		case errors.Is(err, schema.ErrMissingIntrinsic):
			fmt.Println("    no intrinsic, skipping pixel projection")
		case err != nil:
			log.Fatalf("failed to project action %d: %v", i, err)
		default:
			fmt.Printf("    Left hand pixels: %v\n", px.Shape())
		}
	}

	// Decode only the frames of the first action.
	if len(actions) > 0 {
		frames, err := actions[0].Frames()
		if err != nil {
			log.Fatalf("failed to decode frames: %v", err)
		}
		fmt.Printf("  First action frames: %v\n", frames.Shape())
	}

	// Batch a few action windows for a training loop.
	ds, err := datasets.NewActionDataset(p, 8, 32)
	if err != nil {
		log.Fatalf("failed to build action dataset: %v", err)
	}
	fmt.Printf("Action dataset: %d actions\n", ds.Len())
	if ds.Len() == 0 {
		return
	}
	_, inputs, _, err := ds.Yield()
	if err != nil {
		log.Fatalf("failed to yield batch: %v", err)
	}
	fmt.Printf("  joints=%v visibility=%v mask=%v\n",
		inputs[0].Shape().Dimensions, inputs[1].Shape().Dimensions, inputs[2].Shape().Dimensions)
}
