package hashcache

import (
	"errors"
	"fmt"
)

// ErrUnreadableArtifact matches every UnreadableArtifactError via errors.Is.
var ErrUnreadableArtifact = errors.New("unreadable artifact")

// UnreadableArtifactError reports an artifact whose content could not be read
// or digested. A build that hits one aborts; no partial table is returned.
type UnreadableArtifactError struct {
	ID  ArtifactID
	Err error
}

func (e *UnreadableArtifactError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrUnreadableArtifact, e.ID, e.Err)
}

func (e *UnreadableArtifactError) Unwrap() []error {
	return []error{ErrUnreadableArtifact, e.Err}
}
