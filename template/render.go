package template

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ChristianF88/piper/fields"
)

// Render writes the merged bytes of t against fv to w, one fragment at a
// time. It never buffers the full output itself, so it is suitable for
// streaming straight into a URL builder; it fails only if w fails.
func Render(t Template, fv fields.View, w io.Writer) error {
	var buf [utf8.UTFMax]byte
	for _, f := range t.Fragments {
		var err error
		switch f.Kind {
		case KindLiteral:
			_, err = w.Write(f.Literal)
		case KindEscapedChar:
			n := utf8.EncodeRune(buf[:], f.Char)
			_, err = w.Write(buf[:n])
		case KindSingle:
			_, err = w.Write(fv.Single(int(f.Lo)))
		case KindRange:
			_, err = w.Write(fv.Range(int(f.Lo), int(f.Hi)))
		case KindUnbounded:
			_, err = w.Write(fv.Unbounded(int(f.Lo)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderToString is a thin adapter over Render for building a URL string.
// The pipeline does not use it: Driver.buildRequest calls Render directly
// with a builder drawn from a pool (see pipeline/pools.go). This standalone
// form allocates its own builder and is meant for one-off callers such as
// tests.
func RenderToString(t Template, fv fields.View) (string, error) {
	var b strings.Builder
	b.Grow(len(t.Source))
	if err := Render(t, fv, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
