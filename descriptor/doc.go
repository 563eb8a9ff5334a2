// Package descriptor defines the declarative content model of the NotchBar SDK.
//
// Every type here is an immutable value: constructors apply forgiving clamping
// to numeric fields (out-of-range inputs are silently bounded, never rejected),
// With* methods return modified copies, and validity is reported by a separate
// non-failing check. Nothing in this package performs I/O.
//
// Key Components:
//   - LiveActivity, LockWidget, NotchExperience: the three top-level descriptors
//   - Icon, Progress, Trailing, Element: closed tagged unions of content variants
//   - Appearance, Border, Shadow, Insets: presentation tuning with fixed ranges
//   - WebContent: sandboxed embedded HTML payloads
//
// Example Usage:
//
//	activity := descriptor.NewLiveActivity("build-42", "com.example.ci", "Deploying").
//		WithLeadingIcon(descriptor.SymbolIcon("shippingbox")).
//		WithIndicator(descriptor.BarProgress()).
//		WithProgress(0.4)
//	if err := activity.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package descriptor
