package grouping

import "log/slog"

// Strategy turns normalized tokens into regions.
//
// Implementations must be deterministic and must assign every token to
// exactly one region.
type Strategy interface {
	Name() string
	Group(tokens []Token) []Region
}

// Result is the outcome of one grouping call.
type Result struct {
	Strategy string   `json:"strategy"`
	Regions  []Region `json:"regions"`
	Boxes    []Box    `json:"boxes"`
	Labels   []string `json:"labels,omitempty"`

	// Tokens are the normalized tokens the regions refer to by ID.
	Tokens []Token `json:"tokens"`

	// Rejected lists malformed annotations that were dropped.
	Rejected []ValidationError `json:"rejected,omitempty"`

	// Filtered lists artifact text that was dropped.
	Filtered []string `json:"filtered,omitempty"`
}

// Engine runs normalization, a strategy and projection.
type Engine struct {
	cfg      Config
	strategy Strategy
	log      *slog.Logger
}

// NewEngine validates cfg and builds an engine. A nil logger falls back to
// slog.Default().
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := cfg.NewStrategy()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, strategy: strategy, log: logger}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Strategy returns the active strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// WithStrategy returns an engine that differs from e only in its strategy. An
// empty name, or the name of the active strategy, returns e itself.
func (e *Engine) WithStrategy(name string) (*Engine, error) {
	if name == "" || name == e.cfg.Strategy {
		return e, nil
	}
	return e.With(Overrides{Strategy: &name})
}

// With returns an engine whose configuration is e's with o applied, sharing
// e's logger. The merged configuration is validated as by NewEngine.
func (e *Engine) With(o Overrides) (*Engine, error) {
	if o == (Overrides{}) {
		return e, nil
	}
	return NewEngine(o.Apply(e.cfg), e.log)
}

// Group groups raw recognizer annotations. An empty input, or one that is
// empty after filtering, yields a Result with no regions.
func (e *Engine) Group(annotations []Annotation) *Result {
	norm := Normalize(annotations, e.cfg.Filter(), e.cfg.SkipHeader)
	for _, rej := range norm.Rejected {
		e.log.Warn("dropped annotation", "index", rej.Index, "text", rej.Text, "reason", rej.Reason)
	}

	res := e.GroupTokens(norm.Tokens)
	res.Rejected = norm.Rejected
	res.Filtered = norm.Filtered

	e.log.Debug("grouped annotations",
		"strategy", res.Strategy,
		"annotations", len(annotations),
		"tokens", len(norm.Tokens),
		"filtered", len(norm.Filtered),
		"rejected", len(norm.Rejected),
		"regions", len(res.Regions))
	return res
}

// GroupTokens groups already normalized tokens. Token IDs must equal their
// index in tokens.
func (e *Engine) GroupTokens(tokens []Token) *Result {
	regions := e.strategy.Group(tokens)
	if regions == nil {
		regions = []Region{}
	}
	boxes, labels := Project(regions, tokens)
	if !e.cfg.TrackLabels {
		labels = nil
	}
	return &Result{
		Strategy: e.strategy.Name(),
		Regions:  regions,
		Boxes:    boxes,
		Labels:   labels,
		Tokens:   tokens,
	}
}
