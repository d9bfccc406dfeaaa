package grouping

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "kmeans" }, "strategy"},
		{"zero ratio", func(c *Config) { c.Horizontal = 0 }, "horizontal_ratio"},
		{"negative weight", func(c *Config) { c.VerticalWeight = -1 }, "vertical_weight"},
		{"zero cut", func(c *Config) { c.DistanceThreshold = 0 }, "distance_threshold"},
		{"negative digits", func(c *Config) { c.MaxDigitCount = -1 }, "max_digit_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)

			_, err := NewEngine(cfg, nil)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("NewEngine() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestNewEngine_UnknownStrategyIsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = "nope"
	if _, err := NewEngine(cfg, nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy", err)
	}
}

func TestEngine_Group(t *testing.T) {
	engine, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	annotations := []Annotation{
		rect("Left atrium appendage 2024-01-01", 0, 0, 90, 45),
		rect("Left", 0, 0, 40, 20),
		rect("atrium", 45, 0, 90, 20),
		rect("appendage", 0, 25, 90, 45),
		rect("ebrary", 300, 300, 360, 320),
		{Text: "half", Vertices: []Vertex{{0, 0}}},
		rect("Aorta", 400, 0, 450, 20),
	}

	res := engine.Group(annotations)

	if res.Strategy != StrategyGreedy {
		t.Errorf("strategy = %q", res.Strategy)
	}
	if len(res.Boxes) != 2 {
		t.Fatalf("got %d boxes, want 2: %+v", len(res.Boxes), res.Boxes)
	}
	assertBox(t, res.Boxes[0], Box{Left: 0, Top: 0, Right: 90, Bottom: 45})
	assertBox(t, res.Boxes[1], Box{Left: 400, Top: 0, Right: 450, Bottom: 20})
	if !reflect.DeepEqual(res.Labels, []string{"Left atrium appendage", "Aorta"}) {
		t.Errorf("labels = %q", res.Labels)
	}
	if len(res.Filtered) != 1 || res.Filtered[0] != "ebrary" {
		t.Errorf("filtered = %v", res.Filtered)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Index != 5 {
		t.Errorf("rejected = %+v", res.Rejected)
	}
	assertPartition(t, res.Regions, len(res.Tokens))
}

func TestEngine_GroupEmpty(t *testing.T) {
	for _, strategy := range []string{StrategyGreedy, StrategyHierarchical} {
		cfg := DefaultConfig()
		cfg.Strategy = strategy
		engine, err := NewEngine(cfg, nil)
		if err != nil {
			t.Fatalf("NewEngine(%s) error = %v", strategy, err)
		}

		for _, in := range [][]Annotation{nil, {rect("header", 0, 0, 1, 1)}, {rect("header", 0, 0, 1, 1), rect("12345", 0, 0, 9, 9)}} {
			res := engine.Group(in)
			if res.Regions == nil || len(res.Regions) != 0 || len(res.Boxes) != 0 {
				t.Errorf("%s: got %d regions, %d boxes; want none", strategy, len(res.Regions), len(res.Boxes))
			}
		}
	}
}

func TestEngine_GroupWithoutLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackLabels = false
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	res := engine.Group([]Annotation{rect("header", 0, 0, 90, 20), rect("Left", 0, 0, 40, 20), rect("atrium", 45, 0, 90, 20)})

	if len(res.Boxes) != 1 {
		t.Fatalf("got %d boxes, want 1", len(res.Boxes))
	}
	if res.Labels != nil {
		t.Errorf("labels = %q, want none", res.Labels)
	}
	data, _ := json.Marshal(res)
	if strings.Contains(string(data), `"labels"`) {
		t.Errorf("labels present in JSON: %s", data)
	}
}

func TestEngine_StrategiesAreInterchangeable(t *testing.T) {
	annotations := []Annotation{
		rect("header", 0, 0, 200, 30),
		rect("Pulmonary", 0, 0, 60, 20),
		rect("trunk", 64, 0, 100, 20),
	}

	for _, strategy := range []string{StrategyGreedy, StrategyHierarchical} {
		t.Run(strategy, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = strategy
			engine, err := NewEngine(cfg, nil)
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}

			res := engine.Group(annotations)

			if res.Strategy != strategy || engine.Strategy().Name() != strategy {
				t.Errorf("strategy = %q, want %q", res.Strategy, strategy)
			}
			if len(res.Boxes) != 1 {
				t.Fatalf("got %d boxes, want 1", len(res.Boxes))
			}
			assertBox(t, res.Boxes[0], Box{Left: 0, Top: 0, Right: 100, Bottom: 20})
			if res.Labels[0] != "Pulmonary trunk" {
				t.Errorf("label = %q", res.Labels[0])
			}
		})
	}
}

func TestEngine_WithStrategy(t *testing.T) {
	base, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	for _, name := range []string{"", StrategyGreedy} {
		got, err := base.WithStrategy(name)
		if err != nil {
			t.Fatalf("WithStrategy(%q) error = %v", name, err)
		}
		if got != base {
			t.Errorf("WithStrategy(%q) built a new engine", name)
		}
	}

	other, err := base.WithStrategy(StrategyHierarchical)
	if err != nil {
		t.Fatalf("WithStrategy() error = %v", err)
	}
	if other.Strategy().Name() != StrategyHierarchical {
		t.Errorf("strategy = %q, want %q", other.Strategy().Name(), StrategyHierarchical)
	}
	if base.Config().Strategy != StrategyGreedy {
		t.Error("base engine changed")
	}

	if _, err := base.WithStrategy("kmeans"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy", err)
	}
}

func TestEngine_WithOverrides(t *testing.T) {
	base, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	// Two 20px lines 7px apart: within 8/20 of the height, beyond 6/20.
	annotations := []Annotation{
		rect("page", 0, 0, 60, 47),
		rect("Mitral", 0, 0, 60, 20),
		rect("valve", 0, 27, 60, 47),
	}

	if got := len(base.Group(annotations).Boxes); got != 1 {
		t.Fatalf("default config: got %d boxes, want 1", got)
	}

	tight := 6.0 / 20
	engine, err := base.With(Overrides{VerticalRatio: &tight})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if got := len(engine.Group(annotations).Boxes); got != 2 {
		t.Errorf("vertical_ratio 6/20: got %d boxes, want 2", got)
	}
	if engine.Config().Horizontal != base.Config().Horizontal {
		t.Error("unset override changed horizontal_ratio")
	}

	same, err := base.With(Overrides{})
	if err != nil || same != base {
		t.Errorf("empty overrides = %p, %v; want the base engine", same, err)
	}

	zero := 0.0
	_, err = base.With(Overrides{DistanceThreshold: &zero})
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "distance_threshold" {
		t.Errorf("error = %v, want distance_threshold ConfigError", err)
	}
}

func TestOverrides_JSON(t *testing.T) {
	var o Overrides
	if err := json.Unmarshal([]byte(`{"vertical_ratio":0.3,"converge":true,"artifact_denylist":[]}`), &o); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	cfg := o.Apply(DefaultConfig())
	if cfg.Vertical != 0.3 || !cfg.Converge {
		t.Errorf("vertical = %v converge = %v", cfg.Vertical, cfg.Converge)
	}
	if len(cfg.ArtifactDenylist) != 0 {
		t.Errorf("denylist = %v, want empty", cfg.ArtifactDenylist)
	}
	if cfg.MaxDigitCount != DefaultConfig().MaxDigitCount {
		t.Errorf("max digits = %d, want default", cfg.MaxDigitCount)
	}
}

func TestBox_JSON(t *testing.T) {
	b := Box{Left: 10, Top: 0, Right: 55, Bottom: 20}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[[10,0],[55,20]]" {
		t.Errorf("Marshal() = %s", data)
	}

	var back Box
	if err := json.Unmarshal([]byte("[[55,20],[10,0]]"), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	assertBox(t, back, b)

	if err := json.Unmarshal([]byte("[[1,2,3]]"), &back); err == nil {
		t.Error("Unmarshal() accepted a malformed box")
	}
}

func TestRegion_JSONKeepsMembers(t *testing.T) {
	data, err := json.Marshal(regionOf(1, 2, 3, 4, 0, 5))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"box":[[1,2],[3,4]],"members":[0,5]}` {
		t.Errorf("Marshal() = %s", data)
	}
}
