package graph

import "errors"

var (
	// ErrInvalidThreshold is returned before any comparison when the
	// threshold is outside [MinThreshold, MaxThreshold].
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrUnknownArtifact is returned when a focus artifact is not a node of
	// the graph.
	ErrUnknownArtifact = errors.New("unknown artifact")

	// ErrSelfLoop is returned when an edge would connect a node to itself.
	ErrSelfLoop = errors.New("self-loop")

	// ErrTooManyArtifacts is returned when the hash table exceeds the
	// configured artifact ceiling for pairwise comparison.
	ErrTooManyArtifacts = errors.New("too many artifacts for pairwise comparison")
)
