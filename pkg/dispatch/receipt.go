package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source identifies which surface a dispatch came in on.
type Source string

const (
	SourceCallable Source = "callable"
	SourcePubsub   Source = "pubsub"
)

// Receipt is the audit record of a single dispatch.
// The destination token is only ever stored as its hash.
type Receipt struct {
	RequestID    string    `json:"requestId"`
	TokenHash    string    `json:"tokenHash"`
	Source       Source    `json:"source"`
	RequestedBy  string    `json:"requestedBy,omitempty"`
	Success      bool      `json:"success"`
	MessageID    string    `json:"messageId,omitempty"`
	ErrorKind    Kind      `json:"errorKind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewReceipt captures the outcome of a Dispatch call.
func NewReceipt(requestID string, source Source, req NotificationRequest, res *Result, err error) Receipt {
	r := Receipt{
		RequestID: requestID,
		TokenHash: HashToken(req.Token),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		r.ErrorKind = KindOf(err)
		r.ErrorMessage = err.Error()
		return r
	}
	if res != nil {
		r.Success = res.Success
		r.MessageID = res.MessageID
	}
	return r
}

// HashToken returns the hex SHA-256 of a destination token.
func HashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}
