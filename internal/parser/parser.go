package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saviobatista/ballometer-tracker/internal/types"
)

var (
	// ErrMissingTime is returned when a payload carries no usable time channel
	ErrMissingTime = errors.New("time channel is missing")
	// ErrInvalidEvent is returned for cursor events without the field their kind needs
	ErrInvalidEvent = errors.New("invalid cursor event")
)

// ParseColdPayload decodes a /store/before document. Every time element must be
// present; the other channels may contain nulls and may differ in length.
func ParseColdPayload(data []byte) (*types.ColdPayload, error) {
	var payload types.ColdPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid cold payload: %w", err)
	}
	if err := ValidateColdPayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ValidateColdPayload checks the time channel of a cold payload
func ValidateColdPayload(payload *types.ColdPayload) error {
	if len(payload.Time) == 0 {
		return ErrMissingTime
	}
	for i, t := range payload.Time {
		if t == nil {
			return fmt.Errorf("%w: null at index %d", ErrMissingTime, i)
		}
	}
	return nil
}

// ParseLiveSample decodes a /store/now document
func ParseLiveSample(data []byte) (*types.LiveSample, error) {
	var sample types.LiveSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("invalid live sample: %w", err)
	}
	if sample.Time == nil {
		return nil, ErrMissingTime
	}
	return &sample, nil
}

// ParseCursorEvent decodes a drag or scrub gesture
func ParseCursorEvent(data []byte) (*types.CursorEvent, error) {
	var event types.CursorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("invalid cursor event: %w", err)
	}

	switch event.Kind {
	case types.CursorEventDrag:
		if event.Point == nil {
			return nil, fmt.Errorf("%w: drag without point", ErrInvalidEvent)
		}
	case types.CursorEventScrub:
		if event.Index == nil {
			return nil, fmt.Errorf("%w: scrub without index", ErrInvalidEvent)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, event.Kind)
	}

	return &event, nil
}
