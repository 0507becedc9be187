package event

const faultFieldsVersion = "2.0"

// Fault reports an alarm raised or cleared by the VNF.
type Fault struct {
	Header

	condition       string
	specificProblem string
	severity        Severity
	sourceType      SourceType
	vfStatus        VfStatus

	category       Optional[string]
	interfaceA     Optional[string]
	additionalInfo KeyValueList
}

// NewFault creates a fault event with its mandatory fields.
// An empty id is replaced with a generated UUID.
func NewFault(
	name, id string,
	condition, specificProblem string,
	priority Priority,
	severity Severity,
	sourceType SourceType,
	vfStatus VfStatus,
) *Fault {
	f := &Fault{
		condition:       condition,
		specificProblem: specificProblem,
		severity:        severity,
		sourceType:      sourceType,
		vfStatus:        vfStatus,
	}
	f.initHeader(DomainFault, name, id)
	f.priority = priority
	return f
}

// SetCategory sets the optional event category (e.g. "link", "license").
func (f *Fault) SetCategory(category string) *Fault {
	f.category.Set(category)
	return f
}

// SetInterface sets the optional alarm interface.
func (f *Fault) SetInterface(name string) *Fault {
	f.interfaceA.Set(name)
	return f
}

// AddInfo appends one alarm additional-information pair.
func (f *Fault) AddInfo(name, value string) *Fault {
	f.additionalInfo.Add(name, value)
	return f
}
