package driver

import (
	"encoding/binary"

	"fortio.org/safecast"
	"github.com/VictoriaMetrics/fastcache"
	"github.com/vmihailenco/msgpack/v5"

	"condflow/internal/bytecode"
	"condflow/internal/diag"
	"condflow/internal/source"
)

// Current schema version - increment when UnitPayload format changes
const unitSchemaVersion uint16 = 1

// Cache keeps compiled units in memory across Compile calls. Entries larger
// than 64KB are not kept. Thread-safe for concurrent access.
type Cache struct {
	mem *fastcache.Cache
}

// NewCache creates a cache holding at most maxBytes of encoded units.
func NewCache(maxBytes int) *Cache {
	return &Cache{mem: fastcache.New(maxBytes)}
}

// Len returns the number of cached units.
func (c *Cache) Len() uint64 {
	if c == nil {
		return 0
	}
	var s fastcache.Stats
	c.mem.UpdateStats(&s)
	return s.EntriesCount
}

// Reset drops every cached unit.
func (c *Cache) Reset() {
	if c != nil {
		c.mem.Reset()
	}
}

func (c *Cache) get(key uint64, out *UnitPayload) bool {
	if c == nil {
		return false
	}
	data, ok := c.mem.HasGet(nil, cacheKey(key))
	if !ok {
		return false
	}
	return msgpack.Unmarshal(data, out) == nil && out.Schema == unitSchemaVersion
}

func (c *Cache) put(key uint64, payload *UnitPayload) {
	if c == nil {
		return
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return
	}
	c.mem.Set(cacheKey(key), data)
}

func cacheKey(key uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], key)
	return b[:]
}

// UnitPayload is the cached form of a compiled unit. Spans are stored
// relative to the start of the method so that a method keeps its cache
// entry when code above it changes.
type UnitPayload struct {
	Schema         uint16
	Diagnostics    []PayloadDiagnostic
	Code           *bytecode.Code
	DeadStatements int
}

// PayloadSpan is a span relative to the start of its method.
type PayloadSpan struct {
	Start, End int64
}

// PayloadDiagnostic is a diagnostic with method-relative spans.
type PayloadDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  PayloadSpan
	Notes    []PayloadNote
	Fixes    []PayloadFix
}

type PayloadNote struct {
	Span PayloadSpan
	Msg  string
}

type PayloadFix struct {
	Title string
	Edits []PayloadEdit
}

type PayloadEdit struct {
	Span    PayloadSpan
	NewText string
}

// unitToPayload converts a compiled unit for caching.
func unitToPayload(u *Unit, base uint32) *UnitPayload {
	rel := func(sp source.Span) PayloadSpan {
		return PayloadSpan{Start: int64(sp.Start) - int64(base), End: int64(sp.End) - int64(base)}
	}
	payload := &UnitPayload{
		Schema:         unitSchemaVersion,
		DeadStatements: u.DeadStatements,
	}
	for _, d := range u.bag.Items() {
		pd := PayloadDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Primary:  rel(d.Primary),
		}
		for _, n := range d.Notes {
			pd.Notes = append(pd.Notes, PayloadNote{Span: rel(n.Span), Msg: n.Msg})
		}
		for _, f := range d.Fixes {
			pf := PayloadFix{Title: f.Title}
			for _, e := range f.Edits {
				pf.Edits = append(pf.Edits, PayloadEdit{Span: rel(e.Span), NewText: e.NewText})
			}
			pd.Fixes = append(pd.Fixes, pf)
		}
		payload.Diagnostics = append(payload.Diagnostics, pd)
	}
	if u.Code != nil {
		code := *u.Code
		code.File = 0
		code.Positions = make([]bytecode.PositionEntry, len(u.Code.Positions))
		for i, p := range u.Code.Positions {
			p.SourceStart -= base
			code.Positions[i] = p
		}
		payload.Code = &code
	}
	return payload
}

// payloadToUnit fills u from a cached payload. It fails when a span no longer
// fits the file, in which case the entry is treated as a miss.
func payloadToUnit(payload *UnitPayload, u *Unit, file source.FileID, base uint32) error {
	abs := func(sp PayloadSpan) (source.Span, error) {
		start, err := safecast.Conv[uint32](int64(base) + sp.Start)
		if err != nil {
			return source.Span{}, err
		}
		end, err := safecast.Conv[uint32](int64(base) + sp.End)
		if err != nil {
			return source.Span{}, err
		}
		return source.Span{File: file, Start: start, End: end}, nil
	}

	bag := diag.NewBag(0)
	for _, pd := range payload.Diagnostics {
		primary, err := abs(pd.Primary)
		if err != nil {
			return err
		}
		d := diag.Diagnostic{
			Severity: diag.Severity(pd.Severity),
			Code:     diag.Code(pd.Code),
			Message:  pd.Message,
			Primary:  primary,
		}
		for _, n := range pd.Notes {
			sp, err := abs(n.Span)
			if err != nil {
				return err
			}
			d.Notes = append(d.Notes, diag.Note{Span: sp, Msg: n.Msg})
		}
		for _, f := range pd.Fixes {
			fix := diag.Fix{Title: f.Title}
			for _, e := range f.Edits {
				sp, err := abs(e.Span)
				if err != nil {
					return err
				}
				fix.Edits = append(fix.Edits, diag.FixEdit{Span: sp, NewText: e.NewText})
			}
			d.Fixes = append(d.Fixes, fix)
		}
		bag.Add(d)
	}
	if payload.Code != nil {
		code := *payload.Code
		code.File = file
		for i := range code.Positions {
			code.Positions[i].SourceStart += base
		}
		u.Code = &code
	}
	u.bag = bag
	u.DeadStatements = payload.DeadStatements
	u.Cached = true
	return nil
}
