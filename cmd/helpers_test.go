package cmd

import (
	"errors"
	"testing"

	"github.com/aviadshiber/tz/internal/client"
	"github.com/matryer/is"
)

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   any
		wantErr bool
	}{
		{in: "Name=Sam Smith", name: "Name", value: "Sam Smith"},
		{in: "Age=31", name: "Age", value: float64(31)},
		{in: "Active=true", name: "Active", value: true},
		{in: `Quoted="42"`, name: "Quoted", value: "42"},
		{in: "Empty=", name: "Empty", value: ""},
		{in: "Nothing=null", name: "Nothing", value: "null"},
		{in: "Expr=a=b", name: "Expr", value: "a=b"},
		{in: "missing", wantErr: true},
		{in: "=value", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			is := is.New(t)
			name, value, err := parseAttribute(tt.in)
			if tt.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(name, tt.name)
			is.Equal(value, tt.value)
		})
	}
}

func TestParseReference(t *testing.T) {
	is := is.New(t)

	name, refType, refID, err := parseReference("Nationality=Country:US")
	is.NoErr(err)
	is.Equal(name, "Nationality")
	is.Equal(refType, "Country")
	is.Equal(refID, "US")

	// Only the first colon separates type from id.
	_, _, refID, err = parseReference("Link=Url:https://example.com")
	is.NoErr(err)
	is.Equal(refID, "//example.com")

	for _, bad := range []string{"Nationality", "=Country:US", "Nationality=Country", "Nationality=:US", "Nationality=Country:"} {
		_, _, _, err := parseReference(bad)
		is.True(err != nil) // bad reference
	}
}

func TestParseTarget(t *testing.T) {
	is := is.New(t)

	targetType, targetID, err := parseTarget("Company:Store A")
	is.NoErr(err)
	is.Equal(targetType, "Company")
	is.Equal(targetID, "Store A")

	_, _, err = parseTarget("Company")
	is.True(err != nil)
}

func TestParseGeo(t *testing.T) {
	is := is.New(t)

	lat, lon, err := parseGeo("40.71, -74.00")
	is.NoErr(err)
	is.Equal(lat, "40.71")
	is.Equal(lon, "-74.00")

	_, _, err = parseGeo("40.71")
	is.True(err != nil)
	_, _, err = parseGeo("1,2,3")
	is.True(err != nil)
}

func TestSplitCSV(t *testing.T) {
	is := is.New(t)

	is.Equal(splitCSV(""), []string(nil))
	is.Equal(splitCSV("a, b,,c "), []string{"a", "b", "c"})
}

func TestResponsePairs(t *testing.T) {
	is := is.New(t)
	plain := func(s string, _ bool) string { return s }
	mark := func(s string) string { return "!" + s }

	pairs := responsePairs(client.Completed(200, []byte(`{"token":"abc"}`)), plain, mark)
	is.Equal(pairs, [][2]string{
		{"STATUS", "200 OK"},
		{"DATA", `{"token":"abc"}`},
	})

	pairs = responsePairs(client.Completed(404, nil), plain, mark)
	is.Equal(len(pairs), 2)
	is.Equal(pairs[0], [2]string{"STATUS", "404 Not Found"})
	is.Equal(pairs[1][0], "ERROR")
	is.Equal(pairs[1][1][:1], "!")

	pairs = responsePairs(client.Failed(errors.New("connection refused")), plain, mark)
	is.Equal(pairs, [][2]string{{"ERROR", "!error: connection refused"}})
}
