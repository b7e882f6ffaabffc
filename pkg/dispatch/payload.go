package dispatch

import "strconv"

// Fixed platform delivery settings. Every payload carries the same values.
const (
	AndroidPriorityHigh     = "high"
	AndroidChannelID        = "default"
	AndroidClickAction      = "FLUTTER_NOTIFICATION_CLICK"
	ApplePriorityImmediate  = 10
	AppleSoundDefault       = "default"
	AppleBadge              = 1
	applePriorityHeaderName = "apns-priority"
)

// AndroidBlock holds the Android delivery options.
type AndroidBlock struct {
	// Priority is the message delivery priority.
	Priority string `json:"priority"`
	// NotificationPriority is the on-device notification priority.
	NotificationPriority string `json:"notificationPriority"`
	ChannelID            string `json:"channelId"`
	DefaultSound         bool   `json:"defaultSound"`
	// ClickAction is the client-side route activated when the user taps the notification.
	ClickAction string `json:"clickAction"`
}

// AppleBlock holds the Apple-platform delivery options.
type AppleBlock struct {
	Priority   int    `json:"priority"`
	AlertTitle string `json:"alertTitle"`
	AlertBody  string `json:"alertBody"`
	Sound      string `json:"sound"`
	// Badge is always 1; the true unread count is not known here.
	Badge int `json:"badge"`
}

// Headers returns the APNs request headers for this block.
func (a AppleBlock) Headers() map[string]string {
	return map[string]string{applePriorityHeaderName: strconv.Itoa(a.Priority)}
}

// Payload is the platform-specific representation of a NotificationRequest.
// It exists only for the duration of a send.
type Payload struct {
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	Android AndroidBlock `json:"android"`
	Apple   AppleBlock   `json:"apple"`
}

// BuildPayload derives the payload deterministically from the request content.
// The destination token is not part of the payload.
func BuildPayload(req NotificationRequest) Payload {
	return Payload{
		Title: req.Title,
		Body:  req.Body,
		Android: AndroidBlock{
			Priority:             AndroidPriorityHigh,
			NotificationPriority: AndroidPriorityHigh,
			ChannelID:            AndroidChannelID,
			DefaultSound:         true,
			ClickAction:          AndroidClickAction,
		},
		Apple: AppleBlock{
			Priority:   ApplePriorityImmediate,
			AlertTitle: req.Title,
			AlertBody:  req.Body,
			Sound:      AppleSoundDefault,
			Badge:      AppleBadge,
		},
	}
}
