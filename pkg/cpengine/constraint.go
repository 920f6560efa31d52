package cpengine

// Constraint is a problem-specific rule attached to the model. Post wires
// it to whatever committed-path event should trigger re-propagation;
// InitialPropagate runs the constraint's check once, eagerly, against the
// assignment as it stands (used both at model setup and by the search loop
// after every candidate move).
type Constraint interface {
	Post(a *Assignment) error
	InitialPropagate(a *Assignment) error
}
