package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Exchange holds the schema definition for the Exchange entity: one completed
// chat, reframe or story operation in the journal.
type Exchange struct {
	ent.Schema
}

// Fields of the Exchange.
func (Exchange) Fields() []ent.Field {
	return []ent.Field{
		// id is the gateway-assigned UUID
		field.String("id").
			Unique().
			Immutable().
			NotEmpty(),

		// request_id is the X-Request-ID of the inbound call
		field.String("request_id").
			Default(""),

		// operation is "chat", "reframe" or "story"
		field.String("operation").
			NotEmpty(),

		field.String("model").
			Default(""),

		field.String("language").
			Default(""),

		// request is the inbound JSON body, empty when it was not valid JSON
		field.Text("request").
			Default(""),

		field.Text("reply").
			Default(""),

		// status is the HTTP status returned to the caller
		field.Int("status"),

		field.String("error_kind").
			Default(""),

		field.Time("started_at").
			Immutable(),

		field.Int64("duration_ms").
			Default(0),
	}
}

// Indexes of the Exchange.
func (Exchange) Indexes() []ent.Index {
	return []ent.Index{
		// List reads newest first
		index.Fields("started_at"),

		// Stats groups by operation
		index.Fields("operation"),
	}
}
