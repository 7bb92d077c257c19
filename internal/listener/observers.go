package listener

import "github.com/23skdu/crossbow/internal/core"

// BuildObserver receives the completion event of an index build. The
// engine invokes it once, from an engine-chosen goroutine.
type BuildObserver interface {
	OnBuildComplete(core.CompletionEvent)
}

// QueryObserver receives the completion event of an asynchronous query.
// The engine invokes it once, from an engine-chosen goroutine.
type QueryObserver interface {
	OnQueryComplete(core.CompletionEvent)
}

// BuildObserverFunc adapts a function to BuildObserver.
type BuildObserverFunc func(core.CompletionEvent)

func (f BuildObserverFunc) OnBuildComplete(ev core.CompletionEvent) { f(ev) }

// QueryObserverFunc adapts a function to QueryObserver.
type QueryObserverFunc func(core.CompletionEvent)

func (f QueryObserverFunc) OnQueryComplete(ev core.CompletionEvent) { f(ev) }
