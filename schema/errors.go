package schema

import "errors"

// Error taxonomy shared by the indexer, the loaders and the provider. Callers
// match with errors.Is; every returned error wraps one of these with the
// offending path, benchmark or index.
var (
	// ErrPrecondition reports a caller-side precondition violation, such as a
	// missing corpus root or a segment view without a video path.
	ErrPrecondition = errors.New("precondition violated")

	// ErrUnknownLayout reports a video path that matches no known corpus
	// directory convention.
	ErrUnknownLayout = errors.New("unrecognized corpus layout")

	// ErrUnknownBenchmark reports a benchmark id with no loader strategy.
	ErrUnknownBenchmark = errors.New("unrecognized benchmark")

	// ErrNotImplemented reports a known gap: the request is valid but the
	// capability does not exist yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrIndexOutOfRange reports a demonstration index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMissingIntrinsic reports a projection request on joints without a
	// camera intrinsic.
	ErrMissingIntrinsic = errors.New("missing camera intrinsic")

	// ErrMissingKey reports a required key absent from a store or record.
	ErrMissingKey = errors.New("missing key")
)
