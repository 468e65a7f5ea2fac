package trackzero

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aviadshiber/tz/internal/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Response is the normalized outcome of a call. See client.Response.
type Response = client.Response

// Session TTL bounds.
const (
	DefaultSessionTTL = 3600 * time.Second
	MinSessionTTL     = 300 * time.Second
	MaxSessionTTL     = 3600 * time.Second
)

const (
	TraceAttributeEntityType = "entity-type"
	TraceAttributeEntityID   = "entity-id"
	TraceAttributeEventName  = "event-name"
	TraceAttributeEventType  = "event-type"
	TraceAttributeEventID    = "event-id"
	TraceAttributeSpaceID    = "analytics-space-id"
)

var tracer = otel.Tracer("trackzero-client")

// Client sends entities and events to the TrackZero API. It holds an
// immutable configuration and is safe for concurrent use.
//
// Methods return a local *Error only for invalid input. Remote and transport
// failures are reported in the Response.
type Client struct {
	apiKey    string
	spaceID   string
	transport *client.Client
	bindings  client.Bindings
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, newError(ErrConfiguration, "New", "API key is required")
	}

	cfg := newDefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, newError(ErrConfiguration, "New", "invalid option: %v", err)
		}
	}

	topts := []client.Option{
		client.WithLogger(cfg.logger),
		client.WithHeaders(cfg.headers),
	}
	if cfg.httpClient != nil {
		topts = append(topts, client.WithHTTPClient(cfg.httpClient))
	}

	return &Client{
		apiKey:    apiKey,
		spaceID:   cfg.spaceID,
		transport: client.New(cfg.baseURL, topts...),
		bindings:  client.Bindings{APIKey: apiKey, Placement: cfg.placement},
	}, nil
}

// APIKey returns the key the client authenticates with.
func (c *Client) APIKey() string { return c.apiKey }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.transport.BaseURL() }

// UpsertEntity creates or updates entity.
func (c *Client) UpsertEntity(ctx context.Context, entity *Entity, opts ...CallOption) (Response, error) {
	const op = "UpsertEntity"
	if err := c.ready(op); err != nil {
		return Response{}, err
	}
	if entity == nil || entity.entityType == "" || entity.attrs == nil {
		return Response{}, newError(ErrTypeMismatch, op, "parameter should be an *Entity built with NewEntity")
	}
	if err := entity.Err(); err != nil {
		return Response{}, err
	}
	body, err := encodeBody(op, entity.payload())
	if err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "upsert-entity", trace.WithAttributes(
		attribute.String(TraceAttributeEntityType, entity.entityType),
		attribute.String(TraceAttributeEntityID, fmt.Sprint(entity.id)),
	))
	resp := c.transport.Do(ctx, c.bindings.UpsertEntity(c.scope(opts), body))
	endSpan(span, resp)
	return resp, nil
}

// DeleteEntity deletes the entity identified by (entityType, id).
func (c *Client) DeleteEntity(ctx context.Context, entityType string, id any, opts ...CallOption) (Response, error) {
	const op = "DeleteEntity"
	if err := c.ready(op); err != nil {
		return Response{}, err
	}
	if entityType == "" {
		return Response{}, newError(ErrValidation, op, "type is required")
	}
	if err := checkID(op, "id", id); err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "delete-entity", trace.WithAttributes(
		attribute.String(TraceAttributeEntityType, entityType),
		attribute.String(TraceAttributeEntityID, fmt.Sprint(id)),
	))
	resp := c.transport.Do(ctx, c.bindings.DeleteEntity(c.scope(opts), Reference{Type: entityType, ID: id}))
	endSpan(span, resp)
	return resp, nil
}

// UpsertEvent creates or updates event.
func (c *Client) UpsertEvent(ctx context.Context, event *Event, opts ...CallOption) (Response, error) {
	const op = "UpsertEvent"
	if err := c.ready(op); err != nil {
		return Response{}, err
	}
	if event == nil || event.name == "" || event.attrs == nil {
		return Response{}, newError(ErrTypeMismatch, op, "parameter should be an *Event built with NewEvent")
	}
	if err := event.Err(); err != nil {
		return Response{}, err
	}
	body, err := encodeBody(op, event.payload())
	if err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "upsert-event", trace.WithAttributes(
		attribute.String(TraceAttributeEventName, event.name),
		attribute.String(TraceAttributeEntityType, event.emitterType),
		attribute.String(TraceAttributeEntityID, fmt.Sprint(event.emitterID)),
	))
	resp := c.transport.Do(ctx, c.bindings.UpsertEvent(c.scope(opts), body))
	endSpan(span, resp)
	return resp, nil
}

// DeleteEvent deletes the event identified by (eventType, id).
func (c *Client) DeleteEvent(ctx context.Context, eventType string, id any, opts ...CallOption) (Response, error) {
	const op = "DeleteEvent"
	if err := c.ready(op); err != nil {
		return Response{}, err
	}
	if eventType == "" {
		return Response{}, newError(ErrValidation, op, "type is required")
	}
	if err := checkID(op, "id", id); err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "delete-event", trace.WithAttributes(
		attribute.String(TraceAttributeEventType, eventType),
		attribute.String(TraceAttributeEventID, fmt.Sprint(id)),
	))
	resp := c.transport.Do(ctx, c.bindings.DeleteEvent(c.scope(opts), Reference{Type: eventType, ID: id}))
	endSpan(span, resp)
	return resp, nil
}

// QueryConfiguration returns the configuration of groupID applicable to identifier.
func (c *Client) QueryConfiguration(ctx context.Context, groupID, identifier string) (Response, error) {
	const op = "QueryConfiguration"
	if err := c.ready(op); err != nil {
		return Response{}, err
	}
	if groupID == "" {
		return Response{}, newError(ErrValidation, op, "configuration group id is required")
	}

	ctx, span := tracer.Start(ctx, "query-configuration")
	body := struct {
		Identifier string `json:"identifier"`
	}{identifier}
	resp := c.transport.Do(ctx, c.bindings.QueryConfiguration(groupID, body))
	endSpan(span, resp)
	return resp, nil
}

// CreateAnalyticsSpace creates the analytics space spaceID.
func (c *Client) CreateAnalyticsSpace(ctx context.Context, spaceID string) (Response, error) {
	const op = "CreateAnalyticsSpace"
	if err := c.spaceReady(op, spaceID); err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "create-analytics-space", trace.WithAttributes(
		attribute.String(TraceAttributeSpaceID, spaceID),
	))
	resp := c.transport.Do(ctx, c.bindings.CreateAnalyticsSpace(spaceID))
	endSpan(span, resp)
	return resp, nil
}

// DeleteAnalyticsSpace deletes the analytics space spaceID.
func (c *Client) DeleteAnalyticsSpace(ctx context.Context, spaceID string) (Response, error) {
	const op = "DeleteAnalyticsSpace"
	if err := c.spaceReady(op, spaceID); err != nil {
		return Response{}, err
	}

	ctx, span := tracer.Start(ctx, "delete-analytics-space", trace.WithAttributes(
		attribute.String(TraceAttributeSpaceID, spaceID),
	))
	resp := c.transport.Do(ctx, c.bindings.DeleteAnalyticsSpace(spaceID))
	endSpan(span, resp)
	return resp, nil
}

// CreateSpaceSession requests a session token scoped to spaceID that expires
// after ttl. A zero ttl selects DefaultSessionTTL; otherwise ttl must be whole
// seconds within [MinSessionTTL, MaxSessionTTL].
func (c *Client) CreateSpaceSession(ctx context.Context, spaceID string, ttl time.Duration) (Response, error) {
	const op = "CreateSpaceSession"
	if err := c.spaceReady(op, spaceID); err != nil {
		return Response{}, err
	}
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	if ttl < MinSessionTTL || ttl > MaxSessionTTL {
		return Response{}, newError(ErrValidation, op, "ttl must be between %s and %s, got %s", MinSessionTTL, MaxSessionTTL, ttl)
	}
	if ttl%time.Second != 0 {
		return Response{}, newError(ErrValidation, op, "ttl must be whole seconds, got %s", ttl)
	}

	ctx, span := tracer.Start(ctx, "create-space-session", trace.WithAttributes(
		attribute.String(TraceAttributeSpaceID, spaceID),
	))
	resp := c.transport.Do(ctx, c.bindings.CreateSpaceSession(spaceID, int(ttl/time.Second)))
	endSpan(span, resp)
	return resp, nil
}

func (c *Client) ready(op string) error {
	if c == nil || c.transport == nil {
		return newError(ErrNotInitialized, op, "call New or Initialize first")
	}
	return nil
}

func (c *Client) spaceReady(op, spaceID string) error {
	if err := c.ready(op); err != nil {
		return err
	}
	if spaceID == "" {
		return newError(ErrValidation, op, "analytics space id is required")
	}
	return nil
}

// encodeBody encodes payload up front so a value JSON cannot represent is a
// validation error rather than a failed request.
func encodeBody(op string, payload any) (json.RawMessage, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrValidation, op, "payload cannot be encoded as JSON: %v", err)
	}
	return b, nil
}

func (c *Client) scope(opts []CallOption) string {
	cc := callConfig{spaceID: c.spaceID}
	for _, opt := range opts {
		opt(&cc)
	}
	return cc.spaceID
}

func endSpan(span trace.Span, resp Response) {
	if status, ok := resp.Status(); ok {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err := resp.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
