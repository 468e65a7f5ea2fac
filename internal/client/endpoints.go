// Package client provides the HTTP transport for the TrackZero API: endpoint
// bindings, single-attempt requests, and response normalization.
package client

import (
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the hosted API.
const DefaultBaseURL = "https://api.trackzero.io"

// Path constants for the API families.
const (
	PathEntities      = "/log/entities"
	PathEvents        = "/log/events"
	PathConfiguration = "/dynamicconfiguration/applicable"
	PathSpaces        = "/AnalyticsSpaces"
	PathSpaceSession  = "/AnalyticsSpaces/session"
)

// Query parameter and header names understood by the API.
const (
	ParamAPIKey             = "X-API-KEY"
	ParamAnalyticsSpaceID   = "analyticsSpaceId"
	ParamConfigurationGroup = "configurationGroupId"
	ParamTTL                = "ttl"
	HeaderAPIKey            = "X-API-KEY"
)

// KeyPlacement selects how the API key travels for the log and configuration
// families. The spaces family always uses the header.
type KeyPlacement int

const (
	// KeyInQuery sends the key as the X-API-KEY query parameter.
	KeyInQuery KeyPlacement = iota
	// KeyInHeader sends the key as the X-API-KEY request header.
	KeyInHeader
)

// Binding is one concrete API call.
type Binding struct {
	Method string
	Path   string
	Query  url.Values
	Header map[string]string
	Body   any
}

// Bindings maps domain operations onto Binding values. It does not validate.
type Bindings struct {
	APIKey    string
	Placement KeyPlacement
}

// UpsertEntity posts an entity payload, optionally scoped to a space.
func (b Bindings) UpsertEntity(spaceID string, body any) Binding {
	return b.logCall(http.MethodPost, PathEntities, spaceID, body)
}

// DeleteEntity deletes the entity identified in body.
func (b Bindings) DeleteEntity(spaceID string, body any) Binding {
	return b.logCall(http.MethodDelete, PathEntities, spaceID, body)
}

// UpsertEvent posts an event payload, optionally scoped to a space.
func (b Bindings) UpsertEvent(spaceID string, body any) Binding {
	return b.logCall(http.MethodPost, PathEvents, spaceID, body)
}

// DeleteEvent deletes the event identified in body.
func (b Bindings) DeleteEvent(spaceID string, body any) Binding {
	return b.logCall(http.MethodDelete, PathEvents, spaceID, body)
}

// QueryConfiguration asks for the configuration applicable to body's identifier.
func (b Bindings) QueryConfiguration(groupID string, body any) Binding {
	q := url.Values{}
	q.Set(ParamConfigurationGroup, groupID)
	return b.keyed(Binding{Method: http.MethodPost, Path: PathConfiguration, Query: q, Body: body})
}

// CreateAnalyticsSpace creates the named space.
func (b Bindings) CreateAnalyticsSpace(spaceID string) Binding {
	return b.spaceCall(http.MethodPost, PathSpaces, spaceID, nil)
}

// DeleteAnalyticsSpace deletes the named space.
func (b Bindings) DeleteAnalyticsSpace(spaceID string) Binding {
	return b.spaceCall(http.MethodDelete, PathSpaces, spaceID, nil)
}

// CreateSpaceSession requests a session token for spaceID valid for ttlSeconds.
func (b Bindings) CreateSpaceSession(spaceID string, ttlSeconds int) Binding {
	q := url.Values{}
	q.Set(ParamTTL, strconv.Itoa(ttlSeconds))
	return b.spaceCall(http.MethodGet, PathSpaceSession, spaceID, q)
}

func (b Bindings) logCall(method, path, spaceID string, body any) Binding {
	q := url.Values{}
	if spaceID != "" {
		q.Set(ParamAnalyticsSpaceID, spaceID)
	}
	return b.keyed(Binding{Method: method, Path: path, Query: q, Body: body})
}

func (b Bindings) spaceCall(method, path, spaceID string, q url.Values) Binding {
	if q == nil {
		q = url.Values{}
	}
	q.Set(ParamAnalyticsSpaceID, spaceID)
	return Binding{
		Method: method,
		Path:   path,
		Query:  q,
		Header: map[string]string{HeaderAPIKey: b.APIKey},
	}
}

// keyed attaches the API key according to the configured placement.
func (b Bindings) keyed(call Binding) Binding {
	if b.Placement == KeyInHeader {
		call.Header = map[string]string{HeaderAPIKey: b.APIKey}
		return call
	}
	if call.Query == nil {
		call.Query = url.Values{}
	}
	call.Query.Set(ParamAPIKey, b.APIKey)
	return call
}
