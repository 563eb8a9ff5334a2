package wire

// Op identifies a host operation carried by a request frame.
type Op string

const (
	OpAuthorize          Op = "authorize"
	OpCheckAuthorization Op = "check_authorization"
	OpGetVersion         Op = "get_version"

	OpPresentLiveActivity Op = "present_live_activity"
	OpUpdateLiveActivity  Op = "update_live_activity"
	OpDismissLiveActivity Op = "dismiss_live_activity"

	OpPresentLockWidget Op = "present_lock_widget"
	OpUpdateLockWidget  Op = "update_lock_widget"
	OpDismissLockWidget Op = "dismiss_lock_widget"

	OpPresentNotchExperience Op = "present_notch_experience"
	OpUpdateNotchExperience  Op = "update_notch_experience"
	OpDismissNotchExperience Op = "dismiss_notch_experience"
)

// Event identifies a push notification carried by an event frame.
type Event string

const (
	EventAuthorizationChanged     Event = "authorization_changed"
	EventLiveActivityDismissed    Event = "live_activity_dismissed"
	EventLockWidgetDismissed      Event = "lock_widget_dismissed"
	EventNotchExperienceDismissed Event = "notch_experience_dismissed"
)

// AuthRequest asks the host to grant, or report, publishing authorization for
// a bundle.
type AuthRequest struct {
	BundleID string `json:"bundle_id"`
}

// AuthReply carries the host's authorization decision.
type AuthReply struct {
	Granted bool `json:"granted"`
}

// VersionReply carries the host's version string.
type VersionReply struct {
	Version string `json:"version"`
}

// DismissRequest identifies a previously presented descriptor to remove. The
// reply to a dismiss op is the bare ok flag.
type DismissRequest struct {
	ID       string `json:"id"`
	BundleID string `json:"bundle_id"`
}

// AuthorizationEvent is the payload of authorization_changed pushes.
type AuthorizationEvent struct {
	Granted bool `json:"granted"`
}

// DismissedEvent is the payload of the three *_dismissed pushes.
type DismissedEvent struct {
	ID       string `json:"id"`
	BundleID string `json:"bundle_id,omitempty"`
}
