package publish

// State is the lifecycle position of a Publisher's current or last build.
type State string

const (
	StateIdle              State = "idle"
	StateStructurePrepared State = "structure_prepared"
	StateNodesComputed     State = "nodes_computed"
	StatePagesRendered     State = "pages_rendered"
	StateIndexBuilt        State = "index_built"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Terminal reports whether no further transitions follow s within a build.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }
