package engine

import "fmt"

// Kind names a built-in engine implementation.
type Kind string

const (
	KindHNSW  Kind = "hnsw"
	KindBrute Kind = "brute"
)

// New constructs an engine of the given kind. Each invocation gets a
// fresh, unshared instance.
func New(kind Kind, cfg HNSWConfig) (Engine, error) {
	switch kind {
	case KindHNSW, "":
		return NewHNSW(cfg)
	case KindBrute:
		return NewBruteForce(cfg.Metric)
	default:
		return nil, fmt.Errorf("unknown engine kind %q", kind)
	}
}
