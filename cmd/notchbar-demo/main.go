// Command notchbar-demo walks the SDK surface against a running host or
// simulator: it authorizes, presents one entity of each kind, streams
// updates, then dismisses everything and waits for the dismissal callbacks.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/notchbar/notchbar-go"
	"github.com/notchbar/notchbar-go/descriptor"
	"github.com/notchbar/notchbar-go/internal/logging"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a YAML scenario file")
	minVersion := flag.String("min-version", notchbar.Version, "minimum host version to accept")
	flag.Parse()

	// A .env alongside the binary is convenient for NOTCHBAR_* overrides.
	_ = godotenv.Load()

	log := logging.NewDevelopment().Named("demo")
	defer log.Sync()

	sc := DefaultScenario()
	if *scenarioPath != "" {
		loaded, err := LoadScenario(*scenarioPath)
		if err != nil {
			log.Fatal("loading scenario", zap.Error(err))
		}
		sc = loaded
	}

	cfg, err := notchbar.Load()
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}
	if cfg.BundleID == "" {
		cfg.BundleID = sc.BundleID
	}
	// The demo usually talks to the simulator, which has no app bundle for
	// the probe to find.
	cfg.Probe.AssumeInstalled = true

	client, err := notchbar.New(cfg)
	if err != nil {
		log.Fatal("creating client", zap.Error(err))
	}
	defer client.Close()

	if err := run(log, client, sc, *minVersion); err != nil {
		log.Error("demo failed", zap.Error(err))
		client.Close()
		os.Exit(1)
	}
	log.Info("demo complete")
}

func run(log *logging.Logger, client *notchbar.Client, sc Scenario, minVersion string) error {
	ctx := context.Background()
	pace := time.Duration(sc.PaceMS) * time.Millisecond

	version, err := client.HostVersion(ctx)
	if err != nil {
		return err
	}
	log.Info("connected", zap.String("host_version", version))

	if err := client.CheckCompatibility(ctx, minVersion); err != nil {
		return err
	}

	client.OnAuthorizationChange(func(granted bool) {
		log.Info("authorization changed", zap.Bool("granted", granted))
	})

	granted, err := client.RequestAuthorization(ctx)
	if err != nil {
		return err
	}
	if !granted {
		log.Warn("authorization denied, nothing to present")
		return nil
	}

	dismissed := make(chan string, 3)

	if err := runActivity(ctx, log, client, sc, pace, dismissed); err != nil {
		return err
	}
	if err := runWidget(ctx, log, client, sc, dismissed); err != nil {
		return err
	}
	if err := runNotch(ctx, log, client, sc, dismissed); err != nil {
		return err
	}

	time.Sleep(pace)

	for _, id := range []struct {
		kind    string
		dismiss func() error
	}{
		{"live activity", func() error { return client.DismissLiveActivity(ctx, sc.Activity.ID) }},
		{"lock widget", func() error { return client.DismissLockWidget(ctx, sc.Widget.ID) }},
		{"notch experience", func() error { return client.DismissNotchExperience(ctx, sc.Notch.ID) }},
	} {
		if err := id.dismiss(); err != nil {
			return err
		}
		log.Info("dismissed", zap.String("kind", id.kind))
	}

	// Self-dismissals push events too, so the one-shot callbacks fire.
	for i := 0; i < 3; i++ {
		select {
		case kind := <-dismissed:
			log.Info("dismissal callback fired", zap.String("kind", kind))
		case <-time.After(5 * time.Second):
			log.Warn("timed out waiting for dismissal callbacks")
			return nil
		}
	}
	return nil
}

func runActivity(ctx context.Context, log *logging.Logger, client *notchbar.Client, sc Scenario, pace time.Duration, dismissed chan<- string) error {
	activity := descriptor.NewLiveActivity(sc.Activity.ID, client.BundleID(), sc.Activity.Title).
		WithSubtitle(sc.Activity.Subtitle).
		WithLeadingIcon(descriptor.SymbolIcon("arrow.up.circle")).
		WithIndicator(descriptor.BarProgress()).
		WithProgress(0)

	client.OnLiveActivityDismiss(sc.Activity.ID, func() {
		dismissed <- "live_activity"
	})

	if err := client.PresentLiveActivity(ctx, activity); err != nil {
		return err
	}
	log.Info("presented live activity", zap.String("id", sc.Activity.ID))

	for _, fraction := range sc.Activity.Steps {
		time.Sleep(pace)
		if err := client.UpdateLiveActivity(ctx, activity.WithProgress(fraction)); err != nil {
			return err
		}
		log.Info("updated progress", zap.Float64("fraction", fraction))
	}
	return nil
}

func runWidget(ctx context.Context, log *logging.Logger, client *notchbar.Client, sc Scenario, dismissed chan<- string) error {
	// Synthetic telemetry: more samples than a graph may carry, reduced with
	// the envelope-preserving downsampler.
	samples := make([]float64, sc.Widget.Samples)
	for i := range samples {
		samples[i] = 50 + 40*math.Sin(float64(i)/18) + 10*math.Sin(float64(i)/3)
	}
	points := descriptor.DownsampleGraph(samples, descriptor.MaxGraphPoints)

	widget := descriptor.NewLockWidget(sc.Widget.ID, client.BundleID(), descriptor.LayoutCard,
		descriptor.TextElement(sc.Widget.Title),
		descriptor.GraphElement(points).WithStroke(descriptor.RGB(0.3, 0.8, 0.4)),
		descriptor.GaugeElement(0, 100, samples[len(samples)-1]),
	).WithDismissOnUnlock()

	client.OnLockWidgetDismiss(sc.Widget.ID, func() {
		dismissed <- "lock_widget"
	})

	if err := client.PresentLockWidget(ctx, widget); err != nil {
		return err
	}
	log.Info("presented lock widget",
		zap.String("id", sc.Widget.ID),
		zap.Int("raw_samples", len(samples)),
		zap.Int("graph_points", len(points)),
	)
	return nil
}

func runNotch(ctx context.Context, log *logging.Logger, client *notchbar.Client, sc Scenario, dismissed chan<- string) error {
	tab := descriptor.NewTabConfig(sc.Notch.TabTitle,
		descriptor.NewSection(
			descriptor.TextElement("Session"),
			descriptor.ProgressElement(descriptor.RingProgress(), 0.6),
		).WithHeading("Status", ""),
	).WithFootnote(sc.Notch.Footnote).
		WithIcon(descriptor.SymbolIcon("slider.horizontal.3"))

	experience := descriptor.NewNotchExperience(sc.Notch.ID, client.BundleID()).
		WithAccent(descriptor.RGB(0.9, 0.5, 0.1)).
		WithTab(tab).
		WithMinimal(descriptor.NewMinimalConfig(
			descriptor.NewSection(descriptor.TextElement("Demo running")),
		))

	client.OnNotchExperienceDismiss(sc.Notch.ID, func() {
		dismissed <- "notch_experience"
	})

	if err := client.PresentNotchExperience(ctx, experience); err != nil {
		return err
	}
	log.Info("presented notch experience", zap.String("id", sc.Notch.ID))
	return nil
}
