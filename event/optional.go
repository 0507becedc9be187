package event

// Optional is a value that may be unset. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// Set stores value and marks the optional as set.
func (o *Optional[T]) Set(value T) {
	o.value = value
	o.set = true
}

// Get returns the held value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was stored.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// KeyValue is one name/value pair.
type KeyValue struct {
	Name  string
	Value string
}

// KeyValueList is an ordered name/value list. Duplicate names are kept.
type KeyValueList struct {
	items []KeyValue
}

// Add appends one pair, preserving insertion order.
func (l *KeyValueList) Add(name, value string) {
	l.items = append(l.items, KeyValue{Name: name, Value: value})
}

// Len returns the number of pairs.
func (l *KeyValueList) Len() int {
	return len(l.items)
}

// Items returns a copy of the pairs in insertion order.
func (l *KeyValueList) Items() []KeyValue {
	out := make([]KeyValue, len(l.items))
	copy(out, l.items)
	return out
}
