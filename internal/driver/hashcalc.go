package driver

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"condflow/internal/ast"
	"condflow/internal/sema"
	"condflow/internal/source"
)

// unitKey identifies the compiled form of m. Resolution of m depends on the
// signatures of the methods it may call, and cached notes point at their
// declarations, so the signature and relative position of every method of
// the file are hashed along with the text of m.
func unitKey(f *source.File, m *ast.Method, methods sema.MethodTable, opts Options) uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v)) // #nosec G115 -- bit pattern only
		_, _ = d.Write(buf[:])
	}

	writeInt(int64(unitSchemaVersion))
	var flags int64
	if opts.FakeReachable {
		flags |= 1
	}
	if opts.ReportDeadCode {
		flags |= 2
	}
	writeInt(flags)
	_, _ = d.Write(f.Content[m.Loc.Start:m.Loc.End])

	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		other := methods[name]
		_, _ = d.WriteString(name)
		writeInt(int64(other.NameLoc.Start) - int64(m.Loc.Start))
		writeInt(int64(other.Result))
		for _, p := range other.Params {
			writeInt(int64(p.Type))
		}
		writeInt(-1)
	}
	return d.Sum64()
}
