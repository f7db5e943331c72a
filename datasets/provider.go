package datasets

import (
	"fmt"
	"slices"

	"github.com/Noofbiz/openego/arraystore"
	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/corpus"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
)

// DefaultConfidenceThreshold is the confidence above which a joint counts
// as visible.
const DefaultConfidenceThreshold = 0.5

// Options configures a Provider. Zero fields take the documented defaults.
type Options struct {
	// Modalities to load per item. Defaults to AllModalities.
	Modalities []Modality

	// VideoPattern selects demonstration videos by base name. Defaults to
	// corpus.DefaultPattern.
	VideoPattern string

	// Video probes and decodes videos. Defaults to video.NewFFmpeg().
	Video video.Reader

	// Store reads joint and metadata files. Defaults to arraystore.NPZ.
	Store arraystore.Reader

	// Benchmarks resolves benchmark ids. Defaults to
	// benchmarks.DefaultRegistry().
	Benchmarks *benchmarks.Registry

	// ConfidenceThreshold defaults to DefaultConfidenceThreshold when nil.
	// A threshold of 0 marks every positive confidence visible.
	ConfidenceThreshold *float64

	// Logger defaults to klog.Background().
	Logger logr.Logger
}

// Threshold returns a pointer to t for Options.ConfidenceThreshold.
func Threshold(t float64) *float64 { return &t }

func (o Options) withDefaults() Options {
	if len(o.Modalities) == 0 {
		o.Modalities = slices.Clone(AllModalities)
	}
	if o.VideoPattern == "" {
		o.VideoPattern = corpus.DefaultPattern
	}
	if o.Video == nil {
		o.Video = video.NewFFmpeg()
	}
	if o.Store == nil {
		o.Store = arraystore.NPZ{}
	}
	if o.Benchmarks == nil {
		o.Benchmarks = benchmarks.DefaultRegistry()
	}
	if o.ConfidenceThreshold == nil {
		o.ConfidenceThreshold = Threshold(DefaultConfidenceThreshold)
	}
	if o.Logger.GetSink() == nil {
		o.Logger = klog.Background()
	}
	return o
}

var _ Dataset = (*Provider)(nil)

// Provider gives indexed, lazy access to every demonstration of a corpus.
// It holds no per-item state: each Get reads from disk again.
type Provider struct {
	opts  Options
	index *corpus.Index
	env   benchmarks.Env
}

// Sample is the result of Provider.Get. Only the requested modalities are
// set; check with Has.
type Sample struct {
	Index int
	Demo  corpus.Demonstration

	// Range is the frame range the sample was requested with, nil for all.
	Range *video.FrameRange

	Joints     *schema.JointRecord
	Annotation *schema.AnnotationRecord
	Metadata   schema.Document
	RGB        *ndarray.Array[uint8]

	modalities []Modality
}

// Has reports whether m was loaded.
func (s *Sample) Has(m Modality) bool { return slices.Contains(s.modalities, m) }

// Modalities returns the loaded modalities in load order.
func (s *Sample) Modalities() []Modality { return slices.Clone(s.modalities) }

// NewProvider indexes the corpus under root.
func NewProvider(root string, opts Options) (*Provider, error) {
	opts = opts.withDefaults()
	if _, err := ParseModalities(modalityNames(opts.Modalities)); err != nil {
		return nil, err
	}
	idx, err := corpus.Build(root, corpus.Config{
		Pattern:  opts.VideoPattern,
		Video:    opts.Video,
		Registry: opts.Benchmarks,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{
		opts:  opts,
		index: idx,
		env: benchmarks.Env{
			Store:               opts.Store,
			ConfidenceThreshold: *opts.ConfidenceThreshold,
			Logger:              opts.Logger,
		},
	}, nil
}

func modalityNames(ms []Modality) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}

// Len returns the number of demonstrations.
func (p *Provider) Len() int { return p.index.Len() }

// NumDemos is an alias of Len.
func (p *Provider) NumDemos() int { return p.index.Len() }

// NumFrames returns the total frame count of the corpus.
func (p *Provider) NumFrames() int { return p.index.NumFrames() }

// Duration returns the total corpus duration in seconds.
func (p *Provider) Duration() float64 { return p.index.Duration() }

// Benchmarks returns the distinct benchmark ids present, sorted.
func (p *Provider) Benchmarks() []string { return p.index.Benchmarks() }

// VideoPaths returns every indexed video in index order.
func (p *Provider) VideoPaths() []string { return p.index.VideoPaths() }

// Index exposes the underlying corpus index.
func (p *Provider) Index() *corpus.Index { return p.index }

// Modalities returns the modalities loaded by Get.
func (p *Provider) Modalities() []Modality { return slices.Clone(p.opts.Modalities) }

// Demo returns the indexed demonstration i.
func (p *Provider) Demo(i int) (corpus.Demonstration, error) {
	if i < 0 || i >= p.index.Len() {
		return corpus.Demonstration{}, fmt.Errorf("%w: %d not in [0, %d)", schema.ErrIndexOutOfRange, i, p.index.Len())
	}
	return p.index.Demos[i], nil
}

// Get loads the configured modalities of demonstration i, in the order
// joint, annotation, metadata, rgb. A non-nil range restricts rgb decoding;
// joint loading does not support ranges yet. Any failure aborts the call.
func (p *Provider) Get(i int, r *video.FrameRange) (*Sample, error) {
	return p.get(i, r, p.opts.Modalities)
}

// get loads the given modalities, independent of the configured set.
func (p *Provider) get(i int, r *video.FrameRange, modalities []Modality) (*Sample, error) {
	demo, err := p.Demo(i)
	if err != nil {
		return nil, err
	}
	loader := demo.Benchmark.Loader(p.env)
	s := &Sample{Index: i, Demo: demo, Range: r}
	p.opts.Logger.V(2).Info("loading demonstration", "index", i, "benchmark", demo.Benchmark.ID, "modalities", modalities, "ranged", r != nil)

	wrap := func(m Modality, err error) error {
		return fmt.Errorf("failed to load %s of demo %d (%s, %s): %w", m, i, demo.Benchmark.ID, demo.VideoPath, err)
	}

	if slices.Contains(modalities, Joint) {
		if r != nil {
			return nil, wrap(Joint, fmt.Errorf("%w: frame range %s for joints", schema.ErrNotImplemented, r))
		}
		if s.Joints, err = loader.LoadJoints(demo.VideoPath); err != nil {
			return nil, wrap(Joint, err)
		}
		s.modalities = append(s.modalities, Joint)
	}
	if slices.Contains(modalities, Annotation) {
		if s.Annotation, err = loader.LoadAnnotation(demo.VideoPath); err != nil {
			return nil, wrap(Annotation, err)
		}
		s.modalities = append(s.modalities, Annotation)
	}
	if slices.Contains(modalities, Metadata) {
		doc, err := loader.LoadMetadata(demo.VideoPath, demo.Info)
		if err != nil {
			return nil, wrap(Metadata, err)
		}
		doc["video_path"] = demo.VideoPath
		doc["benchmark"] = demo.Benchmark.ID
		s.Metadata = doc
		s.modalities = append(s.modalities, Metadata)
	}
	if slices.Contains(modalities, RGB) {
		if s.RGB, err = p.opts.Video.Frames(demo.VideoPath, r); err != nil {
			return nil, wrap(RGB, err)
		}
		s.modalities = append(s.modalities, RGB)
	}
	return s, nil
}

// Actions builds a view for every annotated action of s. The sample must
// carry both joints and annotation.
func (p *Provider) Actions(s *Sample) ([]*Action, error) {
	if s.Joints == nil || s.Annotation == nil {
		return nil, fmt.Errorf("%w: actions need joint and annotation data for demo %d", schema.ErrPrecondition, s.Index)
	}
	out := make([]*Action, len(s.Annotation.Actions))
	for i, a := range s.Annotation.Actions {
		out[i] = NewAction(a, s.Demo.Info.FPS, s.Joints, s.Demo.VideoPath, p.opts.Video)
	}
	return out, nil
}
