package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is bumped whenever Event changes incompatibly.
const EnvelopeVersion = 1

// Event is the JSON value of every message the service writes. Subject
// identifies the record the event is about and doubles as the message key.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	SubjectType   string          `json:"subject_type"`
	Subject       string          `json:"subject"`
	ActorID       string          `json:"actor_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Source        string          `json:"source"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id and the current time.
func NewEvent(eventType, subjectType, subject, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		SubjectType: subjectType,
		Subject:     subject,
		Source:      source,
		Version:     EnvelopeVersion,
		OccurredAt:  time.Now().UTC(),
		Data:        payload,
	}, nil
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an envelope read back from a topic.
func Decode(raw []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// DecodeData unmarshals the payload into target.
func (e *Event) DecodeData(target any) error {
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
