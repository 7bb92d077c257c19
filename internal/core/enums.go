package core

// DistanceMetric defines the distance metric used for vector comparison.
type DistanceMetric string

const (
	// MetricEuclidean is the L2 distance (lower is closer).
	MetricEuclidean DistanceMetric = "euclidean"
	// MetricL2Squared is the squared L2 distance. Same ordering as L2
	// without the square root.
	MetricL2Squared DistanceMetric = "l2_squared"
	// MetricCosine is the Cosine distance (1.0 - cosine_similarity).
	MetricCosine DistanceMetric = "cosine"
)

// FailureReason classifies why a build or query operation failed.
type FailureReason string

const (
	// ReasonNone is the zero value for successful outcomes.
	ReasonNone FailureReason = ""
	// ReasonInvalidDimension indicates a vector whose dimension does not
	// match the index's configured dimension.
	ReasonInvalidDimension FailureReason = "invalid_dimension"
	// ReasonInsufficientData indicates the corpus is too small to build
	// or query the index.
	ReasonInsufficientData FailureReason = "insufficient_data"
	// ReasonResourceExhausted indicates system resource limits exceeded.
	ReasonResourceExhausted FailureReason = "resource_exhausted"
	// ReasonCancelled indicates the operation was abandoned before it
	// completed.
	ReasonCancelled FailureReason = "cancelled"
	// ReasonInternal indicates an unclassified engine failure.
	ReasonInternal FailureReason = "internal_error"
	// ReasonProtocolAnomaly indicates the completion protocol itself was
	// violated rather than the operation failing.
	ReasonProtocolAnomaly FailureReason = "protocol_anomaly"
)

// AnomalyKind identifies a specific completion-protocol violation.
type AnomalyKind string

const (
	// AnomalyDoubleFire is a second delivery to an already-fired
	// registration.
	AnomalyDoubleFire AnomalyKind = "double_fire"
	// AnomalyNoFire is a registration retired without ever firing.
	AnomalyNoFire AnomalyKind = "no_fire"
	// AnomalyOutOfOrder is a query completion observed before the build
	// completion of the same invocation.
	AnomalyOutOfOrder AnomalyKind = "out_of_order"
	// AnomalyLateDelivery is a delivery arriving after the invocation was
	// finalized or abandoned. Discarded, never re-processed.
	AnomalyLateDelivery AnomalyKind = "late_delivery"
)
