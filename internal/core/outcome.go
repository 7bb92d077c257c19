package core

// TestOutcome is the pass/fail verdict of one runner invocation, with an
// optional human-readable diagnostic. Immutable once produced; a runner
// produces at most one per invocation.
type TestOutcome struct {
	Passed     bool
	Reason     FailureReason
	Diagnostic string
}

// Pass constructs a passing outcome.
func Pass(diagnostic string) TestOutcome {
	return TestOutcome{Passed: true, Diagnostic: diagnostic}
}

// Fail constructs a failing outcome with its classified reason.
func Fail(reason FailureReason, diagnostic string) TestOutcome {
	return TestOutcome{Passed: false, Reason: reason, Diagnostic: diagnostic}
}
