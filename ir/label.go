package ir

// Label is a forward-reference record shared between one branch op and one
// label-definition marker. A Go pointer gives the shared, interior-mutable
// handle the original Rc<RefCell<TCGLabel>> provided — see SPEC_FULL.md's
// Open Question decision on label sharing.
type Label struct {
	// Offset is the absolute byte position of the label inside the host
	// code buffer. Zero until Bind is called.
	Offset int
	// PendingSites holds the byte offsets of 32-bit relative displacements
	// that must be patched once Offset is known.
	PendingSites []int
}

// NewLabel allocates an unbound label.
func NewLabel() *Label {
	return &Label{}
}

// AddPendingSite records a placeholder displacement awaiting this label.
func (l *Label) AddPendingSite(site int) {
	l.PendingSites = append(l.PendingSites, site)
}

// Bind fixes the label's offset. Called by the emitter when it visits the
// label's definition marker.
func (l *Label) Bind(offset int) {
	l.Offset = offset
}
