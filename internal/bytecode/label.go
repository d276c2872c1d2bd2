package bytecode

const notPlaced = -1

// Label is a jump target inside one CodeStream. Jumps to a label that is
// not placed yet are remembered and patched when it is placed.
type Label struct {
	cs       *CodeStream
	id       int
	pos      int
	refs     []int
	delegate *Label
}

// ID is the allocation number of the label within its stream.
func (l *Label) ID() int { return l.id }

// IsPlaced reports whether the label has a position.
func (l *Label) IsPlaced() bool { return l.pos != notPlaced }

// Position returns the placed pc, or -1.
func (l *Label) Position() int { return l.pos }

// target follows delegation to the label that jumps must really use.
func (l *Label) target() *Label {
	for l.delegate != nil {
		l = l.delegate
	}
	return l
}

// BecomeDelegateFor makes l the target of every jump that refers to other,
// including jumps emitted later. Use it when other sits at a position that
// only transfers control to l, so those jumps skip the intermediate hop.
func (l *Label) BecomeDelegateFor(other *Label) {
	if other == nil || other == l || other.target() == l {
		return
	}
	refs := other.refs
	other.refs = nil
	other.delegate = l
	l.refs = append(l.refs, refs...)
	if l.IsPlaced() {
		for _, ref := range refs {
			l.cs.patch(ref, l.pos)
		}
	}
}
