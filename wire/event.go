package wire

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	envelopeEventKey = "event"
	batchEventsKey   = "eventList"
)

// Event is one validated, encoded event ready for delivery.
// Params: created by NewEvent from an ordered document.
// Returns: immutable wire event; only its encoded bytes travel to the collector.
type Event struct {
	id     string
	domain string
	name   string
	inner  []byte
	single []byte
}

// NewEvent renders an event document into its immutable wire form.
// Params: domain/id/name header identity; document is the event object (header and domain block).
// Returns: wire event or encode error.
func NewEvent(domain, id, name string, document *Object) (*Event, error) {
	if document == nil {
		return nil, fmt.Errorf("event document is nil")
	}
	inner, err := document.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", id, err)
	}

	var single bytes.Buffer
	single.Grow(len(inner) + len(envelopeEventKey) + 5)
	single.WriteString(`{"` + envelopeEventKey + `":`)
	single.Write(inner)
	single.WriteByte('}')

	return &Event{
		id:     id,
		domain: domain,
		name:   name,
		inner:  inner,
		single: single.Bytes(),
	}, nil
}

// ID returns the header event id.
// Params: none.
// Returns: event id.
func (e *Event) ID() string {
	return e.id
}

// Domain returns the header domain tag.
// Params: none.
// Returns: domain name.
func (e *Event) Domain() string {
	return e.domain
}

// Name returns the header event name.
// Params: none.
// Returns: event name.
func (e *Event) Name() string {
	return e.name
}

// Bytes returns a copy of the single-event request body.
// Params: none.
// Returns: `{"event":{...}}` JSON bytes.
func (e *Event) Bytes() []byte {
	out := make([]byte, len(e.single))
	copy(out, e.single)
	return out
}

// Size returns the encoded single-event body length.
// Params: none.
// Returns: byte count.
func (e *Event) Size() int {
	return len(e.single)
}

// Document decodes the event object back into an ordered view.
// Params: none.
// Returns: the object under the "event" key.
func (e *Event) Document() (*Object, error) {
	return Decode(e.inner)
}

// String returns the single-event JSON body.
func (e *Event) String() string {
	return string(e.single)
}

// EncodeBody renders the request body for one or more events.
// Params: events non-empty list in delivery order.
// Returns: single envelope for one event, `{"eventList":[...]}` for several.
func EncodeBody(events []*Event) ([]byte, error) {
	switch len(events) {
	case 0:
		return nil, fmt.Errorf("encode body: no events")
	case 1:
		return events[0].Bytes(), nil
	}

	var body strings.Builder
	body.WriteString(`{"` + batchEventsKey + `":[`)
	for idx, event := range events {
		if event == nil {
			return nil, fmt.Errorf("encode body: event[%d] is nil", idx)
		}
		if idx > 0 {
			body.WriteByte(',')
		}
		body.Write(event.inner)
	}
	body.WriteString("]}")
	return []byte(body.String()), nil
}
