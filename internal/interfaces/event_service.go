package interfaces

import (
	"time"
)

// EventType identifies a pipeline progress event
type EventType string

const (
	EventAssessmentStarted   EventType = "assessment_started"
	EventPlanReady           EventType = "plan_ready"
	EventRetrievalCompleted  EventType = "retrieval_completed"
	EventGateDecision        EventType = "gate_decision"
	EventAnalysisCompleted   EventType = "analysis_completed"
	EventAssessmentCompleted EventType = "assessment_completed"
)

// Event is a progress notification emitted by the assessment pipeline
type Event struct {
	Type      EventType              `json:"type"`
	RequestID string                 `json:"request_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler processes one event
type EventHandler func(event Event)

// EventService is an in-process pub/sub bus for pipeline progress events
type EventService interface {
	// Publish delivers an event to all subscribers (non-blocking)
	Publish(event Event)

	// Subscribe registers a handler for all events and returns an
	// unsubscribe function
	Subscribe(handler EventHandler) func()
}
