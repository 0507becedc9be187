package event

const (
	syslogFieldsVersion = "3.0"
	maxSyslogFacility   = 23
	maxSyslogPri        = 191
)

// Syslog forwards one syslog record.
type Syslog struct {
	Header

	sourceType SourceType
	message    string
	tag        string

	sourceHost       Optional[string]
	facility         Optional[int]
	pri              Optional[int]
	proc             Optional[string]
	procID           Optional[int]
	structuredData   Optional[string]
	severity         Optional[SyslogSeverity]
	version          Optional[int]
	additionalFields KeyValueList
}

// NewSyslog creates a syslog event.
func NewSyslog(name, id string, sourceType SourceType, message, tag string) *Syslog {
	s := &Syslog{
		sourceType: sourceType,
		message:    message,
		tag:        tag,
	}
	s.initHeader(DomainSyslog, name, id)
	return s
}

// SetSourceHost sets the host that produced the record.
func (s *Syslog) SetSourceHost(host string) *Syslog {
	s.sourceHost.Set(host)
	return s
}

// SetFacility sets the syslog facility code (0..23).
func (s *Syslog) SetFacility(facility int) *Syslog {
	s.facility.Set(facility)
	return s
}

// SetPri sets the syslog PRI value (0..191).
func (s *Syslog) SetPri(pri int) *Syslog {
	s.pri.Set(pri)
	return s
}

// SetProc sets the producing process name.
func (s *Syslog) SetProc(proc string) *Syslog {
	s.proc.Set(proc)
	return s
}

// SetProcID sets the producing process id.
func (s *Syslog) SetProcID(pid int) *Syslog {
	s.procID.Set(pid)
	return s
}

// SetStructuredData sets the RFC 5424 structured data string.
func (s *Syslog) SetStructuredData(data string) *Syslog {
	s.structuredData.Set(data)
	return s
}

// SetSeverity sets the syslog severity.
func (s *Syslog) SetSeverity(severity SyslogSeverity) *Syslog {
	s.severity.Set(severity)
	return s
}

// SetVersion sets the syslog protocol version.
func (s *Syslog) SetVersion(version int) *Syslog {
	s.version.Set(version)
	return s
}

// AddField appends one additional name/value pair.
func (s *Syslog) AddField(name, value string) *Syslog {
	s.additionalFields.Add(name, value)
	return s
}
