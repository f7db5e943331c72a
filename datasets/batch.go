package datasets

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/schema"
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// ActionBatchFlat stores a batch of fixed-length action windows in flat
// contiguous buffers
//
//	Joints     (BatchSize, Frames, 2, 21, 3)  left hand first
//	Visibility (BatchSize, Frames, 2, 21)
//	Mask       (BatchSize, Frames)            1 for real frames, 0 for padding
type ActionBatchFlat struct {
	Joints     []float32
	Visibility []float32
	Mask       []float32
	BatchSize  int
	Frames     int
}

const (
	hands      = 2
	jointDim   = 3
	frameJoint = hands * schema.NumJoints * jointDim
	frameVis   = hands * schema.NumJoints
)

// MakeActionBatchFlat flattens actions into windows of frames frames.
// Longer actions are truncated, shorter ones zero-padded.
func MakeActionBatchFlat(actions []*Action, frames int) (*ActionBatchFlat, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("window length must be positive, got %d", frames)
	}
	b := &ActionBatchFlat{
		Joints:     make([]float32, len(actions)*frames*frameJoint),
		Visibility: make([]float32, len(actions)*frames*frameVis),
		Mask:       make([]float32, len(actions)*frames),
		BatchSize:  len(actions),
		Frames:     frames,
	}
	for i, a := range actions {
		seg, err := a.Joints()
		if err != nil {
			return nil, fmt.Errorf("action %d (%q): %w", i, a.Label, err)
		}
		n := min(seg.LeftHand.Len(), seg.RightHand.Len(),
			seg.LeftHandVisibility.Len(), seg.RightHandVisibility.Len(), frames)
		for f := 0; f < n; f++ {
			b.Mask[i*frames+f] = 1
			for h, src := range [...]struct{ j, v []float64 }{
				{seg.LeftHand.Data(), seg.LeftHandVisibility.Data()},
				{seg.RightHand.Data(), seg.RightHandVisibility.Data()},
			} {
				jOff := ((i*frames+f)*hands + h) * schema.NumJoints * jointDim
				for k, v := range src.j[f*schema.NumJoints*jointDim : (f+1)*schema.NumJoints*jointDim] {
					b.Joints[jOff+k] = float32(v)
				}
				vOff := ((i*frames+f)*hands + h) * schema.NumJoints
				for k, v := range src.v[f*schema.NumJoints : (f+1)*schema.NumJoints] {
					b.Visibility[vOff+k] = float32(v)
				}
			}
		}
	}
	return b, nil
}

// ToGomlxTensors converts the batch to gomlx tensors (joints, visibility,
// mask).
func (b *ActionBatchFlat) ToGomlxTensors() (joints, visibility, mask *tensors.Tensor, err error) {
	j := make([][][][][]float32, b.BatchSize)
	v := make([][][][]float32, b.BatchSize)
	m := make([][]float32, b.BatchSize)
	for i := range b.BatchSize {
		j[i] = make([][][][]float32, b.Frames)
		v[i] = make([][][]float32, b.Frames)
		m[i] = b.Mask[i*b.Frames : (i+1)*b.Frames]
		for f := range b.Frames {
			j[i][f] = make([][][]float32, hands)
			v[i][f] = make([][]float32, hands)
			for h := range hands {
				base := (i*b.Frames+f)*hands + h
				v[i][f][h] = b.Visibility[base*schema.NumJoints : (base+1)*schema.NumJoints]
				j[i][f][h] = make([][]float32, schema.NumJoints)
				for k := range schema.NumJoints {
					off := (base*schema.NumJoints + k) * jointDim
					j[i][f][h][k] = b.Joints[off : off+jointDim]
				}
			}
		}
	}
	return tensors.FromAnyValue(j), tensors.FromAnyValue(v), tensors.FromAnyValue(m), nil
}

// actionRef addresses one action of one demonstration.
type actionRef struct {
	demo, action int
}

// ActionDataset yields batches of action windows from a Provider in the
// shape expected by gomlx training loops. Joint records are loaded per
// batch and dropped afterwards.
type ActionDataset struct {
	provider  *Provider
	refs      []actionRef
	order     []int
	next      int
	rand      *rand.Rand
	BatchSize int
	Frames    int
}

// NewActionDataset enumerates every annotated action of the provider's
// corpus. Benchmarks without annotation support are skipped. Only the
// annotation files are read here.
func NewActionDataset(p *Provider, batchSize, frames int) (*ActionDataset, error) {
	if batchSize <= 0 || frames <= 0 {
		return nil, fmt.Errorf("batch size and window length must be positive, got %d and %d", batchSize, frames)
	}
	d := &ActionDataset{
		provider:  p,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		BatchSize: batchSize,
		Frames:    frames,
	}
	for i, demo := range p.index.Demos {
		if demo.Benchmark.Kind == benchmarks.EgoDex {
			continue
		}
		s, err := p.get(i, nil, []Modality{Annotation})
		if err != nil {
			return nil, err
		}
		for a := range s.Annotation.Actions {
			d.refs = append(d.refs, actionRef{demo: i, action: a})
		}
	}
	d.order = make([]int, len(d.refs))
	for i := range d.order {
		d.order[i] = i
	}
	return d, nil
}

// Len returns the number of actions.
func (d *ActionDataset) Len() int { return len(d.refs) }

// Name returns the name of the dataset
func (d *ActionDataset) Name() string { return "ActionDataset" }

// Shuffle permutes the yield order with a fixed seed.
func (d *ActionDataset) Shuffle(seed int64) {
	d.rand.Seed(seed)
	d.rand.Shuffle(len(d.order), func(i, j int) { d.order[i], d.order[j] = d.order[j], d.order[i] })
}

// Batch loads the actions at the given positions of the yield order.
func (d *ActionDataset) Batch(positions []int) ([]*Action, error) {
	records := map[int]*Sample{}
	out := make([]*Action, len(positions))
	for k, pos := range positions {
		if pos < 0 || pos >= len(d.order) {
			return nil, fmt.Errorf("%w: action %d not in [0, %d)", schema.ErrIndexOutOfRange, pos, len(d.order))
		}
		ref := d.refs[d.order[pos]]
		s, ok := records[ref.demo]
		if !ok {
			var err error
			if s, err = d.provider.get(ref.demo, nil, []Modality{Joint, Annotation}); err != nil {
				return nil, err
			}
			records[ref.demo] = s
		}
		actions, err := d.provider.Actions(s)
		if err != nil {
			return nil, err
		}
		out[k] = actions[ref.action]
	}
	return out, nil
}

// Yield returns the next batch as inputs (joints, visibility, mask). It
// returns io.EOF at the end of an epoch; the final batch may be short.
func (d *ActionDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.next >= len(d.order) {
		return nil, nil, nil, io.EOF
	}
	end := min(d.next+d.BatchSize, len(d.order))
	positions := make([]int, 0, end-d.next)
	for i := d.next; i < end; i++ {
		positions = append(positions, i)
	}
	d.next = end

	actions, err := d.Batch(positions)
	if err != nil {
		return nil, nil, nil, err
	}
	flat, err := MakeActionBatchFlat(actions, d.Frames)
	if err != nil {
		return nil, nil, nil, err
	}
	j, v, m, err := flat.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return d, []*tensors.Tensor{j, v, m}, nil, nil
}

// Reset starts a new epoch.
func (d *ActionDataset) Reset() { d.next = 0 }
