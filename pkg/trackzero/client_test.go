package trackzero

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

// newTestServer records every request and replies with status and body.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  map[string]string{},
			header: r.Header.Clone(),
		}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		reqs = append(reqs, rec)

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestNewRequiresAPIKey(t *testing.T) {
	is := is.New(t)

	c, err := New("")
	is.True(c == nil)
	is.True(errors.Is(err, ErrConfiguration))

	_, err = New("key", WithBaseURL(""))
	is.True(errors.Is(err, ErrConfiguration))
}

func TestUpsertEntity(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c, err := New("my key", WithBaseURL(srv.URL))
	is.NoErr(err)

	e, _ := NewEntity("User", "1")
	e.AddAttribute("Name", "Sam").
		AddAttribute("Plan", "pro").
		AddEntityReferencedAttribute("Nationality", "Country", "US")

	resp, err := c.UpsertEntity(context.Background(), e)
	is.NoErr(err)
	is.True(resp.OK())

	is.Equal(len(*reqs), 1)
	got := (*reqs)[0]
	is.Equal(got.method, http.MethodPost)
	is.Equal(got.path, "/log/entities")
	is.Equal(got.query["X-API-KEY"], "my key")
	_, scoped := got.query["analyticsSpaceId"]
	is.True(!scoped)
	is.Equal(got.header.Get("Content-Type"), "application/json")
	is.Equal(got.body["type"], "User")
	is.Equal(got.body["id"], "1")
	is.Equal(got.body["customAttributes"], map[string]any{
		"Name":        "Sam",
		"Plan":        "pro",
		"Nationality": []any{map[string]any{"type": "Country", "id": "US"}},
	})
}

func TestUpsertEntityNotFoundDoesNotFail(t *testing.T) {
	is := is.New(t)

	srv, _ := newTestServer(t, http.StatusNotFound, `{"msg":"not found"}`)
	c, _ := New("key", WithBaseURL(srv.URL))
	e, _ := NewEntity("User", "1")

	resp, err := c.UpsertEntity(context.Background(), e)
	is.NoErr(err)

	status, ok := resp.Status()
	is.True(ok)
	is.Equal(status, http.StatusNotFound)
	is.Equal(resp.Data(), map[string]any{"msg": "not found"})
	is.True(resp.ErrorMessage() != "")

	var se *StatusError
	is.True(errors.As(resp.Err(), &se))
}

func TestTransportFailureIsReportedInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	c, _ := New("key", WithBaseURL(baseURL))
	ctx := context.Background()
	e, _ := NewEntity("User", "1")
	ev, _ := NewEvent("User", "1", "Ping")

	calls := map[string]func() (Response, error){
		"UpsertEntity":         func() (Response, error) { return c.UpsertEntity(ctx, e) },
		"DeleteEntity":         func() (Response, error) { return c.DeleteEntity(ctx, "User", "1") },
		"UpsertEvent":          func() (Response, error) { return c.UpsertEvent(ctx, ev) },
		"DeleteEvent":          func() (Response, error) { return c.DeleteEvent(ctx, "Ping", "1") },
		"QueryConfiguration":   func() (Response, error) { return c.QueryConfiguration(ctx, "g", "u") },
		"CreateAnalyticsSpace": func() (Response, error) { return c.CreateAnalyticsSpace(ctx, "s") },
		"DeleteAnalyticsSpace": func() (Response, error) { return c.DeleteAnalyticsSpace(ctx, "s") },
		"CreateSpaceSession":   func() (Response, error) { return c.CreateSpaceSession(ctx, "s", 0) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)

			resp, err := call()
			is.NoErr(err)
			is.True(resp.TransportFailed())
			_, ok := resp.Status()
			is.True(!ok)
			is.True(strings.HasPrefix(resp.ErrorMessage(), "error: "))

			var te *TransportError
			is.True(errors.As(resp.Err(), &te))
		})
	}
}

func TestUpsertEntityRejectsInvalidInput(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New("key", WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := c.UpsertEntity(ctx, nil)
	is.True(errors.Is(err, ErrTypeMismatch))

	_, err = c.UpsertEntity(ctx, &Entity{})
	is.True(errors.Is(err, ErrTypeMismatch))

	e, _ := NewEntity("User", "1")
	e.AddAttribute("_hidden", 1)
	_, err = c.UpsertEntity(ctx, e)
	is.True(errors.Is(err, ErrValidation))

	_, err = c.UpsertEvent(ctx, nil)
	is.True(errors.Is(err, ErrTypeMismatch))

	is.Equal(len(*reqs), 0)
}

func TestUpsertRejectsPayloadThatCannotBeEncoded(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New("key", WithBaseURL(srv.URL))
	ctx := context.Background()

	// A map value mutated after it was added still reaches the payload.
	settings := map[string]any{"ratio": 0.5}
	e, _ := NewEntity("User", "1")
	e.AddAttribute("Settings", settings)
	is.NoErr(e.Err())
	settings["ratio"] = math.NaN()

	_, err := c.UpsertEntity(ctx, e)
	is.True(errors.Is(err, ErrValidation))

	ev, _ := NewEvent("User", "1", "Ping")
	ev.AddAttribute("Settings", settings)
	_, err = c.UpsertEvent(ctx, ev)
	is.True(errors.Is(err, ErrValidation))

	_, err = encodeBody("op", make(chan int))
	is.True(errors.Is(err, ErrValidation))

	is.Equal(len(*reqs), 0)
}

func TestDeleteEntityAndEvent(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, ``)
	c, _ := New("key", WithBaseURL(srv.URL), WithAnalyticsSpace("10"))
	ctx := context.Background()

	_, err := c.DeleteEntity(ctx, "", "1")
	is.True(IsValidationError(err))
	_, err = c.DeleteEntity(ctx, "User", nil)
	is.True(IsValidationError(err))
	_, err = c.DeleteEvent(ctx, "Ping", "")
	is.True(IsValidationError(err))

	resp, err := c.DeleteEntity(ctx, "User", 5)
	is.NoErr(err)
	is.True(resp.OK())
	is.Equal(resp.Data(), nil)

	_, err = c.DeleteEvent(ctx, "Ping", "e1", InSpace("20"))
	is.NoErr(err)

	is.Equal(len(*reqs), 2)

	is.Equal((*reqs)[0].method, http.MethodDelete)
	is.Equal((*reqs)[0].path, "/log/entities")
	is.Equal((*reqs)[0].query["analyticsSpaceId"], "10")
	is.Equal((*reqs)[0].body, map[string]any{"type": "User", "id": float64(5)})

	is.Equal((*reqs)[1].method, http.MethodDelete)
	is.Equal((*reqs)[1].path, "/log/events")
	is.Equal((*reqs)[1].query["analyticsSpaceId"], "20")
	is.Equal((*reqs)[1].body, map[string]any{"type": "Ping", "id": "e1"})
}

func TestUpsertEventWithHeaderKey(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusCreated, `{"id":"evt"}`)
	c, _ := New("key", WithBaseURL(srv.URL), WithKeyPlacement(KeyInHeader), WithHeader("X-Client", "tz-test"))

	ev, _ := NewEvent("User", "1", "Checked Out")
	ev.AddImpactedTarget("Company", "Store A")

	resp, err := c.UpsertEvent(context.Background(), ev)
	is.NoErr(err)
	is.True(resp.OK())

	got := (*reqs)[0]
	is.Equal(got.path, "/log/events")
	is.Equal(got.header.Get("X-API-KEY"), "key")
	is.Equal(got.header.Get("X-Client"), "tz-test")
	_, inQuery := got.query["X-API-KEY"]
	is.True(!inQuery)
	is.Equal(got.body["name"], "Checked Out")
	is.Equal(got.body["targets"], []any{map[string]any{"type": "Company", "id": "Store A"}})
}

func TestQueryConfiguration(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{"value":"blue"}`)
	c, _ := New("key", WithBaseURL(srv.URL))

	_, err := c.QueryConfiguration(context.Background(), "", "user-1")
	is.True(IsValidationError(err))

	resp, err := c.QueryConfiguration(context.Background(), "group-9", "user-1")
	is.NoErr(err)
	is.Equal(resp.Data(), map[string]any{"value": "blue"})

	got := (*reqs)[0]
	is.Equal(got.method, http.MethodPost)
	is.Equal(got.path, "/dynamicconfiguration/applicable")
	is.Equal(got.query["configurationGroupId"], "group-9")
	is.Equal(got.body, map[string]any{"identifier": "user-1"})
}

func TestAnalyticsSpaces(t *testing.T) {
	is := is.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New("key", WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := c.CreateAnalyticsSpace(ctx, "")
	is.True(IsValidationError(err))
	_, err = c.DeleteAnalyticsSpace(ctx, "")
	is.True(IsValidationError(err))
	_, err = c.CreateSpaceSession(ctx, "", 0)
	is.True(IsValidationError(err))

	_, err = c.CreateAnalyticsSpace(ctx, "s1")
	is.NoErr(err)
	_, err = c.DeleteAnalyticsSpace(ctx, "s1")
	is.NoErr(err)

	is.Equal(len(*reqs), 2)
	is.Equal((*reqs)[0].method, http.MethodPost)
	is.Equal((*reqs)[0].path, "/AnalyticsSpaces")
	is.Equal((*reqs)[0].query["analyticsSpaceId"], "s1")
	is.Equal((*reqs)[0].header.Get("X-API-KEY"), "key")
	is.Equal((*reqs)[1].method, http.MethodDelete)
}

func TestCreateSpaceSessionTTL(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		wantTTL string
		wantErr bool
	}{
		{name: "default", ttl: 0, wantTTL: "3600"},
		{name: "lower bound", ttl: 300 * time.Second, wantTTL: "300"},
		{name: "upper bound", ttl: 3600 * time.Second, wantTTL: "3600"},
		{name: "below lower bound", ttl: 299 * time.Second, wantErr: true},
		{name: "above upper bound", ttl: 3601 * time.Second, wantErr: true},
		{name: "negative", ttl: -time.Minute, wantErr: true},
		{name: "fractional seconds", ttl: 300*time.Second + time.Millisecond, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			srv, reqs := newTestServer(t, http.StatusOK, `{"token":"abc"}`)
			c, _ := New("key", WithBaseURL(srv.URL))

			resp, err := c.CreateSpaceSession(context.Background(), "7", tt.ttl)
			if tt.wantErr {
				is.True(IsValidationError(err))
				is.Equal(len(*reqs), 0)
				return
			}

			is.NoErr(err)
			is.True(resp.OK())
			got := (*reqs)[0]
			is.Equal(got.method, http.MethodGet)
			is.Equal(got.path, "/AnalyticsSpaces/session")
			is.Equal(got.query["analyticsSpaceId"], "7")
			is.Equal(got.query["ttl"], tt.wantTTL)
			is.Equal(got.header.Get("X-API-KEY"), "key")
		})
	}
}

func TestNilClientIsNotInitialized(t *testing.T) {
	is := is.New(t)

	var c *Client
	ctx := context.Background()
	e, _ := NewEntity("User", "1")

	_, err := c.UpsertEntity(ctx, e)
	is.True(IsNotInitialized(err))
	_, err = c.DeleteEntity(ctx, "User", "1")
	is.True(IsNotInitialized(err))
	_, err = c.CreateSpaceSession(ctx, "7", 0)
	is.True(IsNotInitialized(err))
}
