package flight

// escapeDebounce filters raw key edges into full presses. A KeyUp fires
// only when the matching KeyDown was seen after binding, so an Escape
// held across a mode switch cannot trigger the new mode's handler on
// release alone.
type escapeDebounce struct {
	armed bool
	fire  func()
}

func newEscapeDebounce(fire func()) *escapeDebounce {
	return &escapeDebounce{fire: fire}
}

func (d *escapeDebounce) handle(edge KeyEdge) {
	switch edge {
	case KeyDown:
		d.armed = true
	case KeyUp:
		if d.armed {
			d.armed = false
			d.fire()
		}
	}
}
