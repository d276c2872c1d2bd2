package source

import (
	"testing"
)

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.java", []byte("ab\ncd\n\nxyz"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "end of first line", off: 2, want: LineCol{Line: 1, Col: 3}},
		{name: "second line", off: 3, want: LineCol{Line: 2, Col: 1}},
		{name: "empty line", off: 6, want: LineCol{Line: 3, Col: 1}},
		{name: "last line", off: 9, want: LineCol{Line: 4, Col: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.java", []byte("first\nsecond\n\nlast")))

	want := map[uint32]string{0: "", 1: "first", 2: "second", 3: "", 4: "last", 5: ""}
	for n, line := range want {
		if got := f.GetLine(n); got != line {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, line)
		}
	}
}

func TestNormalizeCRLF(t *testing.T) {
	got := string(normalizeCRLF([]byte("a\r\nb\rc\r\n")))
	if got != "a\nb\rc\n" {
		t.Errorf("normalizeCRLF = %q", got)
	}
}

func TestSpan_Cover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover across files = %v, want %v", got, a)
	}
	if !a.Cover(b).Contains(a) {
		t.Errorf("cover does not contain operand")
	}
}
