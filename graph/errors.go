package graph

import (
	"errors"
	"fmt"
)

// ErrIntegrity is matched by every GraphIntegrityError.
var ErrIntegrity = errors.New("graph integrity violation")

// Integrity violation reasons.
const (
	ReasonStartNotFound       = "start node not found"
	ReasonNextNotFound        = "next target not found"
	ReasonDefaultNextNotFound = "default next target not found"
	ReasonDuplicateNode       = "duplicate node"
)

// GraphIntegrityError reports a graph definition that references a node
// which does not exist or is otherwise malformed.
type GraphIntegrityError struct {
	GraphID string
	Node    string
	Target  string
	Reason  string
}

func (e *GraphIntegrityError) Error() string {
	msg := fmt.Sprintf("graph %q: %s", e.GraphID, e.Reason)
	if e.Node != "" {
		msg += fmt.Sprintf(" (node %q", e.Node)
		if e.Target != "" {
			msg += fmt.Sprintf(", target %q", e.Target)
		}
		msg += ")"
	} else if e.Target != "" {
		msg += fmt.Sprintf(" (%q)", e.Target)
	}
	return msg
}

// Unwrap enables errors.Is(err, ErrIntegrity).
func (e *GraphIntegrityError) Unwrap() error {
	return ErrIntegrity
}
