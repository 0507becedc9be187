package event

const heartbeatFieldsVersion = "1.0"

// Heartbeat is a header-only liveness event.
type Heartbeat struct {
	Header
}

// NewHeartbeat creates a heartbeat event.
func NewHeartbeat(name, id string) *Heartbeat {
	h := &Heartbeat{}
	h.initHeader(DomainHeartbeat, name, id)
	return h
}

// HeartbeatField is a heartbeat that announces its interval and extra fields.
type HeartbeatField struct {
	Header

	interval         int
	additionalFields KeyValueList
}

// NewHeartbeatField creates a heartbeat event carrying heartbeatFields.
// interval is in seconds.
func NewHeartbeatField(name, id string, interval int) *HeartbeatField {
	h := &HeartbeatField{interval: interval}
	h.initHeader(DomainHeartbeat, name, id)
	return h
}

// AddField appends one additional name/value pair.
func (h *HeartbeatField) AddField(name, value string) *HeartbeatField {
	h.additionalFields.Add(name, value)
	return h
}
