package cmd

import (
	"fmt"
	"time"

	"github.com/aviadshiber/tz/pkg/trackzero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newEventsCmd())
}

func newEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Upsert and delete events",
		Long:  "Record events emitted by an entity, optionally impacting other entities.",
	}

	eventsCmd.AddCommand(newEventsUpsertCmd())
	eventsCmd.AddCommand(newEventsDeleteCmd())
	return eventsCmd
}

type eventFlags struct {
	emitterType string
	emitterID   string
	name        string
	id          string
	generateID  bool
	start       string
	end         string
	attrs       []string
	refs        []string
	targets     []string
}

func newEventsUpsertCmd() *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or update an event",
		Example: `  # Record a checkout by a user that impacted a store
  tz events upsert --emitter-type User --emitter-id 87717c11 --name "Checked Out" \
    --attr "Cart Total=799.99" --ref Item=Product:SKU-1234 --target Company:"Store A"

  # Make the submission idempotent with a generated id
  tz events upsert --emitter-type User --emitter-id 1 --name Ping --generate-id

  # Explicit start and end times (RFC 3339)
  tz events upsert --emitter-type User --emitter-id 1 --name Session \
    --start 2024-01-01T10:00:00Z --end 2024-01-01T10:30:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsUpsert(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.emitterType, "emitter-type", "", "Type of the emitting entity (required)")
	cmd.Flags().StringVar(&f.emitterID, "emitter-id", "", "Id of the emitting entity (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "Event name (required)")
	cmd.Flags().StringVar(&f.id, "id", "", "Event id for deduplication (optional)")
	cmd.Flags().BoolVar(&f.generateID, "generate-id", false, "Generate a random event id")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time, RFC 3339 (default: now, set by the service)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time, RFC 3339 (default: now, set by the service)")
	cmd.Flags().StringArrayVar(&f.attrs, "attr", nil, "Attribute name=value (repeatable; JSON values are decoded)")
	cmd.Flags().StringArrayVar(&f.refs, "ref", nil, "Referenced attribute name=Type:ID (repeatable)")
	cmd.Flags().StringArrayVar(&f.targets, "target", nil, "Impacted entity Type:ID (repeatable)")
	_ = cmd.MarkFlagRequired("emitter-type")
	_ = cmd.MarkFlagRequired("emitter-id")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("id", "generate-id")

	return cmd
}

func runEventsUpsert(cmd *cobra.Command, f eventFlags) error {
	event, err := buildEvent(f)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.UpsertEvent(cmd.Context(), event)
	if err != nil {
		return err
	}
	return renderResponse(cmd, resp)
}

// buildEvent turns command-line flags into a validated event.
func buildEvent(f eventFlags) (*trackzero.Event, error) {
	event, err := trackzero.NewEvent(f.emitterType, f.emitterID, f.name)
	if err != nil {
		return nil, err
	}

	switch {
	case f.generateID:
		event.WithGeneratedID()
	case f.id != "":
		event.WithID(f.id)
	}

	if f.start != "" {
		t, err := time.Parse(time.RFC3339, f.start)
		if err != nil {
			return nil, fmt.Errorf("invalid --start %q: %w", f.start, err)
		}
		event.StartedAt(t)
	}
	if f.end != "" {
		t, err := time.Parse(time.RFC3339, f.end)
		if err != nil {
			return nil, fmt.Errorf("invalid --end %q: %w", f.end, err)
		}
		event.EndedAt(t)
	}

	for _, a := range f.attrs {
		name, value, err := parseAttribute(a)
		if err != nil {
			return nil, err
		}
		event.AddAttribute(name, value)
	}
	for _, r := range f.refs {
		name, refType, refID, err := parseReference(r)
		if err != nil {
			return nil, err
		}
		event.AddEntityReferencedAttribute(name, refType, refID)
	}
	for _, t := range f.targets {
		targetType, targetID, err := parseTarget(t)
		if err != nil {
			return nil, err
		}
		event.AddImpactedTarget(targetType, targetID)
	}

	return event, event.Err()
}

func newEventsDeleteCmd() *cobra.Command {
	var eventType, id string

	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete an event",
		Example: `  tz events delete --type "Checked Out" --id evt-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			resp, err := c.DeleteEvent(cmd.Context(), eventType, id)
			if err != nil {
				return err
			}
			return renderResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "Event type (required)")
	cmd.Flags().StringVar(&id, "id", "", "Event id (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
