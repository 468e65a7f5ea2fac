package iostreams

import (
	"testing"

	"github.com/matryer/is"
)

func TestQuietSuppressesPrintfOnly(t *testing.T) {
	is := is.New(t)

	s, out, errOut := Test()
	s.SetQuiet(true)

	s.Printf("hello %s\n", "world")
	s.Errorf("boom\n")

	is.True(s.IsQuiet())
	is.Equal(out.String(), "")
	is.Equal(errOut.String(), "boom\n")
}

func TestStylesArePlainWithoutColor(t *testing.T) {
	is := is.New(t)

	s, _, _ := Test()

	is.True(!s.IsTerminal())
	is.Equal(s.Outcome("200", true), "200")
	is.Equal(s.Outcome("404", false), "404")
	is.Equal(s.Bold("x"), "x")
	is.Equal(s.Muted("y"), "y")
}
