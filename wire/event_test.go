package wire

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func testEvent(t *testing.T, id string) *Event {
	t.Helper()
	doc := NewObject().
		Set("commonEventHeader", NewObject().Set("domain", "heartbeat").Set("eventId", id)).
		Set("heartbeatFields", NewObject().Set("heartbeatInterval", 60))
	ev, err := NewEvent("heartbeat", id, "hb", doc)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestObjectKeepsInsertionOrder(t *testing.T) {
	obj := NewObject().Set("z", 1).Set("a", "x").Set("m", []string{"p", "q"})

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"z":1,"a":"x","m":["p","q"]}` {
		t.Fatalf("unexpected json: %s", got)
	}
	if got := obj.Names(); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestEventSingleEnvelope(t *testing.T) {
	ev := testEvent(t, "e-1")

	want := `{"event":{"commonEventHeader":{"domain":"heartbeat","eventId":"e-1"},"heartbeatFields":{"heartbeatInterval":60}}}`
	if ev.String() != want {
		t.Fatalf("unexpected envelope:\n got %s\nwant %s", ev.String(), want)
	}
	if ev.Size() != len(want) {
		t.Fatalf("Size()=%d want %d", ev.Size(), len(want))
	}
	if ev.ID() != "e-1" || ev.Domain() != "heartbeat" {
		t.Fatalf("unexpected id/domain: %q %q", ev.ID(), ev.Domain())
	}

	body := ev.Bytes()
	body[0] = 'X'
	if ev.Bytes()[0] != '{' {
		t.Fatalf("Bytes must return a copy")
	}
}

func TestEncodeBodyBatch(t *testing.T) {
	one := testEvent(t, "e-1")
	two := testEvent(t, "e-2")

	single, err := EncodeBody([]*Event{one})
	if err != nil {
		t.Fatalf("encode single: %v", err)
	}
	if !bytes.Equal(single, one.Bytes()) {
		t.Fatalf("single body must be the event envelope, got %s", single)
	}

	batch, err := EncodeBody([]*Event{one, two})
	if err != nil {
		t.Fatalf("encode batch: %v", err)
	}

	var decoded struct {
		EventList []struct {
			Header struct {
				EventID string `json:"eventId"`
			} `json:"commonEventHeader"`
		} `json:"eventList"`
	}
	if err := json.Unmarshal(batch, &decoded); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(decoded.EventList) != 2 {
		t.Fatalf("eventList len=%d want 2", len(decoded.EventList))
	}
	if decoded.EventList[0].Header.EventID != "e-1" || decoded.EventList[1].Header.EventID != "e-2" {
		t.Fatalf("unexpected batch order: %+v", decoded.EventList)
	}

	if _, err := EncodeBody(nil); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestDecodeKeepsFieldOrder(t *testing.T) {
	doc, err := testEvent(t, "e-1").Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got := doc.Names(); !reflect.DeepEqual(got, []string{"commonEventHeader", "heartbeatFields"}) {
		t.Fatalf("unexpected names: %v", got)
	}

	interval, ok := doc.Object("heartbeatFields").Get("heartbeatInterval")
	if !ok {
		t.Fatalf("heartbeatInterval missing")
	}
	if interval != json.Number("60") {
		t.Fatalf("heartbeatInterval=%#v want json.Number(\"60\")", interval)
	}
}

func TestDecodeRejectsNonObject(t *testing.T) {
	if _, err := Decode([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for array document")
	}
	if _, err := Decode([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error for trailing document")
	}
}

func TestNewEventNilDocument(t *testing.T) {
	if _, err := NewEvent("fault", "x", "y", nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
