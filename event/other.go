package event

const otherFieldsVersion = "1.1"

// Other is the escape hatch for events that fit no other domain.
type Other struct {
	Header

	fields KeyValueList
}

// NewOther creates an other-domain event.
func NewOther(name, id string) *Other {
	o := &Other{}
	o.initHeader(DomainOther, name, id)
	return o
}

// AddField appends one name/value pair. Duplicate names are kept as sent.
func (o *Other) AddField(name, value string) *Other {
	o.fields.Add(name, value)
	return o
}
