package event

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const headerVersion = "3.0"

var (
	sequence atomic.Int64
	now      = time.Now
)

// Event is one of the event variants defined in this package.
// Every variant embeds Header, so Serialize can read the common fields.
type Event interface {
	EventHeader() *Header
	isEvent()
}

// Header carries the commonEventHeader fields shared by every variant.
// id and eventName are fixed at construction.
type Header struct {
	domain   Domain
	id       string
	name     string
	priority Priority
	sequence int64

	startEpochMicrosec int64
	lastEpochMicrosec  int64

	eventType           Optional[string]
	nfNamingCode        Optional[string]
	nfcNamingCode       Optional[string]
	reportingEntityID   Optional[string]
	sourceID            Optional[string]
	reportingEntityName string
	sourceName          string

	sealed atomic.Bool
}

// initHeader fills the header of a freshly constructed variant.
func (h *Header) initHeader(domain Domain, name, id string) {
	if id == "" {
		id = uuid.NewString()
	}
	micros := now().UnixMicro()

	h.domain = domain
	h.id = id
	h.name = name
	h.priority = PriorityNormal
	h.sequence = sequence.Add(1)
	h.startEpochMicrosec = micros
	h.lastEpochMicrosec = micros
}

// EventHeader returns the header itself; it makes every variant an Event.
func (h *Header) EventHeader() *Header {
	return h
}

func (h *Header) isEvent() {}

// ID returns the event id.
func (h *Header) ID() string { return h.id }

// Name returns the event name.
func (h *Header) Name() string { return h.name }

// Domain returns the domain tag of the variant.
func (h *Header) Domain() Domain { return h.domain }

// Priority returns the event priority.
func (h *Header) Priority() Priority { return h.priority }

// Sequence returns the event sequence number.
func (h *Header) Sequence() int64 { return h.sequence }

// StartEpochMicrosec returns the start timestamp.
func (h *Header) StartEpochMicrosec() int64 { return h.startEpochMicrosec }

// LastEpochMicrosec returns the last timestamp.
func (h *Header) LastEpochMicrosec() int64 { return h.lastEpochMicrosec }

// SourceName returns the source name, possibly empty before hand-off.
func (h *Header) SourceName() string { return h.sourceName }

// ReportingEntityName returns the reporting entity name, possibly empty before hand-off.
func (h *Header) ReportingEntityName() string { return h.reportingEntityName }

// SetPriority sets the event priority.
func (h *Header) SetPriority(priority Priority) *Header {
	h.priority = priority
	return h
}

// SetEventType sets the optional event type.
func (h *Header) SetEventType(eventType string) *Header {
	h.eventType.Set(eventType)
	return h
}

// SetSequence overrides the sequence assigned at construction.
func (h *Header) SetSequence(sequence int64) *Header {
	h.sequence = sequence
	return h
}

// SetStartEpochMicrosec sets the start timestamp.
func (h *Header) SetStartEpochMicrosec(micros int64) *Header {
	h.startEpochMicrosec = micros
	return h
}

// SetLastEpochMicrosec sets the last timestamp. It must not precede the start.
func (h *Header) SetLastEpochMicrosec(micros int64) *Header {
	h.lastEpochMicrosec = micros
	return h
}

// SetNfNamingCode sets the optional network function naming code.
func (h *Header) SetNfNamingCode(code string) *Header {
	h.nfNamingCode.Set(code)
	return h
}

// SetNfcNamingCode sets the optional network function component naming code.
func (h *Header) SetNfcNamingCode(code string) *Header {
	h.nfcNamingCode.Set(code)
	return h
}

// SetReportingEntityID sets the optional reporting entity id.
func (h *Header) SetReportingEntityID(id string) *Header {
	h.reportingEntityID.Set(id)
	return h
}

// SetReportingEntityName sets the reporting entity name.
func (h *Header) SetReportingEntityName(name string) *Header {
	h.reportingEntityName = name
	return h
}

// SetSourceID sets the optional source id.
func (h *Header) SetSourceID(id string) *Header {
	h.sourceID.Set(id)
	return h
}

// SetSourceName sets the source name.
func (h *Header) SetSourceName(name string) *Header {
	h.sourceName = name
	return h
}

// FillDefaults sets reporting entity and source names that were left empty.
func (h *Header) FillDefaults(reportingEntityName, sourceName string) {
	if h.reportingEntityName == "" {
		h.reportingEntityName = reportingEntityName
	}
	if h.sourceName == "" {
		h.sourceName = sourceName
	}
}

// Seal marks the event as handed off.
// Returns: false when the event was already sealed by an earlier hand-off.
func (h *Header) Seal() bool {
	return h.sealed.CompareAndSwap(false, true)
}

// Unseal reverts Seal when the hand-off was refused, so the caller may post the event again.
func (h *Header) Unseal() {
	h.sealed.Store(false)
}

// Sealed reports whether the event was handed off.
func (h *Header) Sealed() bool {
	return h.sealed.Load()
}
