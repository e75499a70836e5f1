package facecluster

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Mode selects which halves of the pipeline a run executes.
type Mode string

const (
	ModeCreateNew      Mode = "create_new"      // clustering only
	ModeAssignExisting Mode = "assign_existing" // assignment only
	ModeBoth           Mode = "both"
)

// Defaults and hard caps for run options. Out-of-range values are clamped
// rather than rejected; only the similarity threshold is hard-validated.
const (
	DefaultLimit = 500
	MaxLimit     = 2000

	DefaultMaxComparisons = 50000
	MaxComparisonsCap     = 500000

	DefaultBands = 8
	MaxBands     = 32

	DefaultRowsPerBand = 4
	MaxRowsPerBand     = 16

	// MinBucketComparisons is the floor for the derived per-bucket cap.
	MinBucketComparisons = 1000
)

var validate = validator.New()

// RunRequest is the raw, externally supplied configuration for one
// clustering run. All fields are optional; absent values take documented
// defaults. It is the single place request bodies are decoded into.
type RunRequest struct {
	SimilarityThreshold  *float64 `json:"similarityThreshold" validate:"omitempty,gte=0,lte=1"`
	Mode                 *string  `json:"mode"`
	Limit                *int     `json:"limit"`
	Offset               *int     `json:"offset"`
	Randomize            *bool    `json:"randomize"`
	MaxComparisons       *int     `json:"maxComparisons"`
	PreCluster           *bool    `json:"preCluster"`
	Bands                *int     `json:"bands"`
	RowsPerBand          *int     `json:"rowsPerBand"`
	MaxBucketComparisons *int     `json:"maxBucketComparisons"`
	Continuous           *bool    `json:"continuous"`
	TargetFaceCount      *int     `json:"targetFaceCount"`
}

// RunOptions is the fully resolved configuration for one clustering run,
// with all defaults and clamps already applied.
type RunOptions struct {
	SimilarityThreshold  float64
	Mode                 Mode
	Limit                int
	Offset               int
	Randomize            bool
	MaxComparisons       int
	PreCluster           bool
	Bands                int
	RowsPerBand          int
	MaxBucketComparisons int
	Seed                 int64
	Continuous           bool
	TargetFaceCount      int
}

// Normalize validates the request and resolves it into RunOptions.
// The similarity threshold is hard-validated against [0,1]; every other
// knob is clamped into its documented range. defaultThreshold supplies the
// persisted configuration value used when the request omits one.
func (r RunRequest) Normalize(defaultThreshold float64) (RunOptions, error) {
	if err := validate.Struct(r); err != nil {
		return RunOptions{}, fmt.Errorf("invalid run request: %w", err)
	}

	opts := RunOptions{
		SimilarityThreshold: defaultThreshold,
		Mode:                ModeBoth,
		Limit:               DefaultLimit,
		MaxComparisons:      DefaultMaxComparisons,
		PreCluster:          true,
		Bands:               DefaultBands,
		RowsPerBand:         DefaultRowsPerBand,
		Seed:                DefaultLSHSeed,
	}

	if r.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *r.SimilarityThreshold
	}
	if opts.SimilarityThreshold < 0 || opts.SimilarityThreshold > 1 {
		return RunOptions{}, fmt.Errorf("similarity threshold %v outside [0,1]", opts.SimilarityThreshold)
	}
	if r.Mode != nil {
		// unknown mode strings clamp to both, the enum analogue of the
		// numeric knobs; only the threshold is a hard rejection
		switch Mode(*r.Mode) {
		case ModeCreateNew, ModeAssignExisting, ModeBoth:
			opts.Mode = Mode(*r.Mode)
		default:
			opts.Mode = ModeBoth
		}
	}
	if r.Limit != nil {
		opts.Limit = clampInt(*r.Limit, 1, MaxLimit)
	}
	if r.Offset != nil && *r.Offset > 0 {
		opts.Offset = *r.Offset
	}
	if r.Randomize != nil {
		opts.Randomize = *r.Randomize
	}
	if r.MaxComparisons != nil {
		opts.MaxComparisons = clampInt(*r.MaxComparisons, 1, MaxComparisonsCap)
	}
	if r.PreCluster != nil {
		opts.PreCluster = *r.PreCluster
	}
	if r.Bands != nil {
		opts.Bands = clampInt(*r.Bands, 1, MaxBands)
	}
	if r.RowsPerBand != nil {
		opts.RowsPerBand = clampInt(*r.RowsPerBand, 1, MaxRowsPerBand)
	}
	if r.MaxBucketComparisons != nil {
		opts.MaxBucketComparisons = clampInt(*r.MaxBucketComparisons, 1, MaxComparisonsCap)
	} else {
		opts.MaxBucketComparisons = derivedBucketCap(opts.MaxComparisons, opts.Bands)
	}
	if r.Continuous != nil {
		opts.Continuous = *r.Continuous
	}
	if r.TargetFaceCount != nil && *r.TargetFaceCount > 0 {
		opts.TargetFaceCount = *r.TargetFaceCount
	}

	return opts, nil
}

func derivedBucketCap(maxComparisons, bands int) int {
	perBucket := maxComparisons / bands
	if perBucket < MinBucketComparisons {
		perBucket = MinBucketComparisons
	}
	return perBucket
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
