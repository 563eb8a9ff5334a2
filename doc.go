// Package notchbar is the client SDK for publishing content to a locally
// running NotchBar host.
//
// Applications build immutable descriptors for the three content kinds and
// hand them to a Client, which validates locally, talks to the host over one
// lazily connected channel, and delivers host pushes (dismissals,
// authorization changes) on a serialized callback queue.
//
// Content kinds:
//   - descriptor.LiveActivity: ongoing-task presentation in the notch area
//   - descriptor.LockWidget: lock screen widget built from content elements
//   - descriptor.NotchExperience: persistent notch tab and/or minimal view
//
// Failure model:
//   - Construction never fails; out-of-range values are clamped
//   - Validate/IsValid report structural problems without panicking
//   - Every host-touching operation returns a typed *errors.Error
//   - No retries and no default timeouts; Config.CallTimeout is the knob
//
// Example Usage:
//
//	client, err := notchbar.New(notchbar.Config{BundleID: "com.example.brew"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.RequestAuthorization(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	activity := descriptor.NewLiveActivity("brew-1", "com.example.brew", "Brewing").
//	    WithTrailing(descriptor.CountdownTrailing(done)).
//	    WithProgress(0.4)
//	if err := client.PresentLiveActivity(ctx, activity); err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnLiveActivityDismiss("brew-1", func() {
//	    log.Println("user dismissed the brew activity")
//	})
package notchbar
