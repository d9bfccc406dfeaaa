package grouping

import (
	"errors"
	"fmt"
)

// Strategy names accepted by Config.Strategy.
const (
	StrategyGreedy       = "greedy"
	StrategyHierarchical = "hierarchical"
)

// ErrUnknownStrategy is wrapped by ConfigError when Config.Strategy names no
// known strategy.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Config holds every tunable of the grouping engine.
type Config struct {
	// Strategy selects the grouper: "greedy" or "hierarchical".
	Strategy string `toml:"strategy" json:"strategy"`

	// Ratios scale the median token height into greedy thresholds.
	Ratios

	// RoundThresholds rounds greedy thresholds half-to-even to whole pixels.
	RoundThresholds bool `toml:"round_thresholds" json:"round_thresholds"`

	HorizontalWeight  float64 `toml:"horizontal_weight" json:"horizontal_weight"`
	VerticalWeight    float64 `toml:"vertical_weight" json:"vertical_weight"`
	DistanceThreshold float64 `toml:"distance_threshold" json:"distance_threshold"`

	// ArtifactDenylist holds watermark strings dropped before grouping.
	ArtifactDenylist []string `toml:"artifact_denylist" json:"artifact_denylist"`

	// MaxDigitCount is the most digits a token may contain before it is
	// treated as noise.
	MaxDigitCount int `toml:"max_digit_count" json:"max_digit_count"`

	// TrackLabels carries member text through merges so every box gets a
	// label. When false only boxes are produced.
	TrackLabels bool `toml:"track_labels" json:"track_labels"`

	// SkipHeader discards the first annotation, the recognizer's aggregate of
	// the whole image.
	SkipHeader bool `toml:"skip_header" json:"skip_header"`

	// Converge repeats the chosen strategy over its own output until nothing
	// more merges. Off by default, which keeps the single-pass behavior.
	Converge bool `toml:"converge" json:"converge"`
}

// DefaultConfig returns the defaults: greedy strategy, ratios 11/20 (words),
// 8/20 (lines) and 6/20 (height difference), weights 1 and 3 with a cut at 60.
func DefaultConfig() Config {
	return Config{
		Strategy: StrategyGreedy,
		Ratios: Ratios{
			Horizontal: 11.0 / 20,
			Vertical:   8.0 / 20,
			HeightDiff: 6.0 / 20,
		},
		HorizontalWeight:  1.0,
		VerticalWeight:    3.0,
		DistanceThreshold: 60,
		ArtifactDenylist:  []string{"ebrary", "F.Netter"},
		MaxDigitCount:     4,
		TrackLabels:       true,
		SkipHeader:        true,
	}
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid grouping config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks that every field is usable.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyGreedy, StrategyHierarchical:
	default:
		return &ConfigError{Field: "strategy", Err: fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)}
	}

	positive := []struct {
		field string
		value float64
	}{
		{"horizontal_ratio", c.Horizontal},
		{"vertical_ratio", c.Vertical},
		{"height_diff_ratio", c.HeightDiff},
		{"horizontal_weight", c.HorizontalWeight},
		{"vertical_weight", c.VerticalWeight},
		{"distance_threshold", c.DistanceThreshold},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return &ConfigError{Field: p.field, Err: fmt.Errorf("must be positive, got %v", p.value)}
		}
	}

	if c.MaxDigitCount < 0 {
		return &ConfigError{Field: "max_digit_count", Err: fmt.Errorf("must not be negative, got %d", c.MaxDigitCount)}
	}
	return nil
}

// Filter returns the artifact filter described by c.
func (c Config) Filter() ArtifactFilter {
	return ArtifactFilter{MaxDigits: c.MaxDigitCount, Denylist: c.ArtifactDenylist}
}

// NewStrategy returns the strategy c selects.
func (c Config) NewStrategy() (Strategy, error) {
	switch c.Strategy {
	case StrategyGreedy:
		return GreedyMerge{Ratios: c.Ratios, RoundThresholds: c.RoundThresholds, Converge: c.Converge}, nil
	case StrategyHierarchical:
		return HierarchicalCluster{
			HorizontalWeight:  c.HorizontalWeight,
			VerticalWeight:    c.VerticalWeight,
			DistanceThreshold: c.DistanceThreshold,
			Converge:          c.Converge,
		}, nil
	default:
		return nil, &ConfigError{Field: "strategy", Err: fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)}
	}
}

// Overrides is a partial Config. Nil fields keep the base value.
type Overrides struct {
	Strategy          *string   `json:"strategy,omitempty"`
	HorizontalRatio   *float64  `json:"horizontal_ratio,omitempty"`
	VerticalRatio     *float64  `json:"vertical_ratio,omitempty"`
	HeightDiffRatio   *float64  `json:"height_diff_ratio,omitempty"`
	RoundThresholds   *bool     `json:"round_thresholds,omitempty"`
	HorizontalWeight  *float64  `json:"horizontal_weight,omitempty"`
	VerticalWeight    *float64  `json:"vertical_weight,omitempty"`
	DistanceThreshold *float64  `json:"distance_threshold,omitempty"`
	ArtifactDenylist  *[]string `json:"artifact_denylist,omitempty"`
	MaxDigitCount     *int      `json:"max_digit_count,omitempty"`
	TrackLabels       *bool     `json:"track_labels,omitempty"`
	SkipHeader        *bool     `json:"skip_header,omitempty"`
	Converge          *bool     `json:"converge,omitempty"`
}

// Apply returns base with every non-nil override written over it. The result
// is not validated.
func (o Overrides) Apply(base Config) Config {
	set(&base.Strategy, o.Strategy)
	set(&base.Horizontal, o.HorizontalRatio)
	set(&base.Vertical, o.VerticalRatio)
	set(&base.HeightDiff, o.HeightDiffRatio)
	set(&base.RoundThresholds, o.RoundThresholds)
	set(&base.HorizontalWeight, o.HorizontalWeight)
	set(&base.VerticalWeight, o.VerticalWeight)
	set(&base.DistanceThreshold, o.DistanceThreshold)
	set(&base.ArtifactDenylist, o.ArtifactDenylist)
	set(&base.MaxDigitCount, o.MaxDigitCount)
	set(&base.TrackLabels, o.TrackLabels)
	set(&base.SkipHeader, o.SkipHeader)
	set(&base.Converge, o.Converge)
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
