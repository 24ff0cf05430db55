// Package mother implements the mutation side of the clause-tree engine:
// structural validation, the reparent/rootify/undo/redo operations, and
// atomic batches. Every rejected mutation leaves state untouched and maps
// to one of the stable reason codes below.
package mother

import "errors"

// Reason is the machine-readable rejection code carried by every mutation
// error. The transport layer translates reasons into HTTP status codes; the
// core only distinguishes not-found, policy/invariant rejection, and empty
// history.
type Reason string

const (
	ReasonNodeNotFound       Reason = "NODE_NOT_FOUND"
	ReasonMotherNotClause    Reason = "MOTHER_NOT_CLAUSE"
	ReasonMotherIDNotSmaller Reason = "MOTHER_ID_NOT_SMALLER"
	ReasonContainerMismatch  Reason = "CONTAINER_MISMATCH"
	ReasonSameNode           Reason = "SAME_NODE"
	ReasonCycle              Reason = "CYCLE"
	ReasonDepthLimit         Reason = "DEPTH_LIMIT"
	ReasonRootifyDisabled    Reason = "ROOTIFY_DISABLED"
	ReasonNoHistory          Reason = "NO_HISTORY"
)

// Error is a rejected mutation. All mutation errors are non-fatal: the
// caller can retry with different input.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return "mother: " + string(e.Reason)
}

// Sentinel errors, one per reason. Operations return these directly, so
// errors.Is comparisons against them work.
var (
	ErrNodeNotFound       = &Error{ReasonNodeNotFound}
	ErrMotherNotClause    = &Error{ReasonMotherNotClause}
	ErrMotherIDNotSmaller = &Error{ReasonMotherIDNotSmaller}
	ErrContainerMismatch  = &Error{ReasonContainerMismatch}
	ErrSameNode           = &Error{ReasonSameNode}
	ErrCycle              = &Error{ReasonCycle}
	ErrDepthLimit         = &Error{ReasonDepthLimit}
	ErrRootifyDisabled    = &Error{ReasonRootifyDisabled}
	ErrNoHistory          = &Error{ReasonNoHistory}
)

// ReasonOf extracts the rejection reason from an error, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me.Reason, true
	}
	return "", false
}
