package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Scenario describes what the demo presents. Every field has a default so an
// empty file, or no file at all, still produces a full walkthrough.
type Scenario struct {
	BundleID string `yaml:"bundle_id"`
	// PaceMS is the pause between presentation steps in milliseconds.
	PaceMS int `yaml:"pace_ms"`

	Activity ActivityScenario `yaml:"activity"`
	Widget   WidgetScenario   `yaml:"widget"`
	Notch    NotchScenario    `yaml:"notch"`
}

// ActivityScenario drives the live activity walkthrough.
type ActivityScenario struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	// Steps are progress fractions applied one update at a time.
	Steps []float64 `yaml:"steps"`
}

// WidgetScenario drives the lock widget walkthrough.
type WidgetScenario struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	// Samples sizes the synthetic telemetry buffer fed through the graph
	// downsampler.
	Samples int `yaml:"samples"`
}

// NotchScenario drives the notch experience walkthrough.
type NotchScenario struct {
	ID       string `yaml:"id"`
	TabTitle string `yaml:"tab_title"`
	Footnote string `yaml:"footnote"`
}

// DefaultScenario is the built-in walkthrough.
func DefaultScenario() Scenario {
	return Scenario{
		BundleID: "com.notchbar.demo",
		PaceMS:   400,
		Activity: ActivityScenario{
			ID:       "demo-upload",
			Title:    "Uploading",
			Subtitle: "42 files",
			Steps:    []float64{0.25, 0.5, 0.75, 1.0},
		},
		Widget: WidgetScenario{
			ID:      "demo-cpu",
			Title:   "CPU",
			Samples: 512,
		},
		Notch: NotchScenario{
			ID:       "demo-controls",
			TabTitle: "Demo Controls",
			Footnote: "driven by notchbar-demo",
		},
	}
}

// LoadScenario reads a YAML file over the defaults.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse scenario: %w", err)
	}
	return sc, nil
}
