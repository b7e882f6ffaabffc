// Package dispatch contains the push dispatch core: request validation,
// platform payload construction, the single provider send and outcome
// classification.
package dispatch

// NotificationRequest is the inbound send request. It is immutable once decoded.
type NotificationRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Token string `json:"token"`
}

// Validate reports an InvalidArgument error if any field is empty.
func (r NotificationRequest) Validate() error {
	if r.Title == "" || r.Body == "" || r.Token == "" {
		return InvalidArgument(msgMissingParameters)
	}
	return nil
}

// Result is returned to the caller when the provider accepts the send.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}
