package cmd

import (
	"testing"
	"time"

	"github.com/aviadshiber/tz/pkg/trackzero"
	"github.com/matryer/is"
)

func TestBuildEvent(t *testing.T) {
	is := is.New(t)

	event, err := buildEvent(eventFlags{
		emitterType: "User",
		emitterID:   "87717c11",
		name:        "Checked Out",
		id:          "evt-1",
		start:       "2024-01-01T10:00:00Z",
		end:         "2024-01-01T10:30:00Z",
		attrs:       []string{"Cart Total=799.99"},
		refs:        []string{"Item=Product:SKU-1234"},
		targets:     []string{"Company:Store A", "Company:Store B"},
	})
	is.NoErr(err)
	is.Equal(event.Name(), "Checked Out")
	is.Equal(event.EmitterType(), "User")
	is.Equal(event.ID(), "evt-1")
	is.Equal(event.Attributes()["Cart Total"], 799.99)
	is.Equal(event.Attributes()["Item"], []trackzero.Reference{{Type: "Product", ID: "SKU-1234"}})
	is.Equal(event.Targets(), []trackzero.Reference{
		{Type: "Company", ID: "Store A"},
		{Type: "Company", ID: "Store B"},
	})
}

func TestBuildEventGeneratedID(t *testing.T) {
	is := is.New(t)

	event, err := buildEvent(eventFlags{emitterType: "User", emitterID: "1", name: "Ping", generateID: true})
	is.NoErr(err)
	id, ok := event.ID().(string)
	is.True(ok)
	is.Equal(len(id), 36) // uuid string form
}

func TestBuildEventRejectsInvalidInput(t *testing.T) {
	base := func() eventFlags {
		return eventFlags{emitterType: "User", emitterID: "1", name: "Ping"}
	}

	tests := []struct {
		name   string
		mutate func(*eventFlags)
	}{
		{"missing name", func(f *eventFlags) { f.name = "" }},
		{"bad start", func(f *eventFlags) { f.start = "yesterday" }},
		{"bad end", func(f *eventFlags) { f.end = "2024-13-01" }},
		{"end before start", func(f *eventFlags) {
			f.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
			f.end = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		}},
		{"reserved attribute", func(f *eventFlags) { f.attrs = []string{"_x=1"} }},
		{"malformed target", func(f *eventFlags) { f.targets = []string{"Company"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			f := base()
			tt.mutate(&f)
			_, err := buildEvent(f)
			is.True(err != nil)
		})
	}
}
