package graph

import "errors"

var (
	// ErrDuplicateName reports an AddModule with a name already registered.
	ErrDuplicateName = errors.New("duplicate module name")
	// ErrUnknownModule reports a reference to a module name not in the graph.
	ErrUnknownModule = errors.New("unknown module")
	// ErrIndexOutOfRange reports a connection endpoint index beyond the
	// module's declared input or output count.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrGraphCycle reports a connection cycle with no designated feedback
	// edge breaking it.
	ErrGraphCycle = errors.New("graph contains a cycle")
	// ErrNotPrepared reports a Process call before Prepare, or a block larger
	// than the prepared capacity.
	ErrNotPrepared = errors.New("graph not prepared")
)
