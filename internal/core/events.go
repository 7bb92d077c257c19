package core

import "fmt"

// EventKind tags a CompletionEvent variant.
type EventKind string

const (
	EventBuildSucceeded EventKind = "build_succeeded"
	EventBuildFailed    EventKind = "build_failed"
	EventQuerySucceeded EventKind = "query_succeeded"
	EventQueryFailed    EventKind = "query_failed"
)

// CompletionEvent is a one-shot notification delivered through the
// listener protocol. Result is set only for EventQuerySucceeded; Reason
// and Cause only for the failed variants. Events are values, never
// control-flow errors: a failed build or query is still a normally
// delivered event.
type CompletionEvent struct {
	Kind   EventKind
	Result QueryResult
	Reason FailureReason
	Cause  error
}

// BuildSucceeded constructs a successful build completion.
func BuildSucceeded() CompletionEvent {
	return CompletionEvent{Kind: EventBuildSucceeded}
}

// BuildFailed constructs a failed build completion.
func BuildFailed(reason FailureReason, cause error) CompletionEvent {
	return CompletionEvent{Kind: EventBuildFailed, Reason: reason, Cause: cause}
}

// QuerySucceeded constructs a successful query completion carrying its
// result.
func QuerySucceeded(result QueryResult) CompletionEvent {
	return CompletionEvent{Kind: EventQuerySucceeded, Result: result}
}

// QueryFailed constructs a failed query completion.
func QueryFailed(reason FailureReason, cause error) CompletionEvent {
	return CompletionEvent{Kind: EventQueryFailed, Reason: reason, Cause: cause}
}

// Succeeded reports whether the event is one of the success variants.
func (e CompletionEvent) Succeeded() bool {
	return e.Kind == EventBuildSucceeded || e.Kind == EventQuerySucceeded
}

func (e CompletionEvent) String() string {
	if e.Succeeded() {
		return string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s(%s): %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Reason)
}
