package bytecode

// PositionEntry maps the pc interval [StartPC, EndPC) to the source offset
// of the construct that produced it.
type PositionEntry struct {
	StartPC     int
	EndPC       int
	SourceStart uint32
}

// RecordPositionsFrom attributes the code emitted since startPC to the
// construct starting at sourceStart. Nothing is recorded for empty code.
func (cs *CodeStream) RecordPositionsFrom(startPC int, sourceStart uint32) {
	if startPC >= cs.Position() {
		return
	}
	cs.positions = append(cs.positions, PositionEntry{StartPC: startPC, EndPC: cs.Position(), SourceStart: sourceStart})
}

func (cs *CodeStream) trimPositions(pc int) {
	kept := cs.positions[:0]
	for _, p := range cs.positions {
		if p.EndPC > pc {
			p.EndPC = pc
		}
		if p.StartPC < p.EndPC {
			kept = append(kept, p)
		}
	}
	cs.positions = kept
}

// SourceAt returns the source offset of the innermost construct covering pc.
func (c *Code) SourceAt(pc int) (uint32, bool) {
	best := -1
	for i, p := range c.Positions {
		if pc < p.StartPC || pc >= p.EndPC {
			continue
		}
		if best < 0 || p.EndPC-p.StartPC < c.Positions[best].EndPC-c.Positions[best].StartPC {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return c.Positions[best].SourceStart, true
}
