package event

// Domain is the commonEventHeader domain tag.
type Domain string

const (
	DomainFault       Domain = "fault"
	DomainHeartbeat   Domain = "heartbeat"
	DomainMeasurement Domain = "measurementsForVfScaling"
	DomainMobileFlow  Domain = "mobileFlow"
	DomainOther       Domain = "other"
	DomainSIP         Domain = "sipSignaling"
	DomainStateChange Domain = "stateChange"
	DomainSyslog      Domain = "syslog"
	DomainThreshold   Domain = "thresholdCrossingAlert"
	DomainVoice       Domain = "voiceQuality"
)

func (d Domain) valid() bool {
	switch d {
	case DomainFault, DomainHeartbeat, DomainMeasurement, DomainMobileFlow, DomainOther,
		DomainSIP, DomainStateChange, DomainSyslog, DomainThreshold, DomainVoice:
		return true
	}
	return false
}

// Priority is the header event priority.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

func (p Priority) valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Severity is the fault and threshold-crossing severity.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityWarning  Severity = "WARNING"
	SeverityNormal   Severity = "NORMAL"
)

func (s Severity) valid() bool {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor, SeverityWarning, SeverityNormal:
		return true
	}
	return false
}

// SourceType classifies the entity that raised an event.
type SourceType string

const (
	SourceOther                  SourceType = "other"
	SourceRouter                 SourceType = "router"
	SourceSwitch                 SourceType = "switch"
	SourceHost                   SourceType = "host"
	SourceCard                   SourceType = "card"
	SourcePort                   SourceType = "port"
	SourceSlotThreshold          SourceType = "slotThreshold"
	SourcePortThreshold          SourceType = "portThreshold"
	SourceVirtualMachine         SourceType = "virtualMachine"
	SourceVirtualNetworkFunction SourceType = "virtualNetworkFunction"
)

func (s SourceType) valid() bool {
	switch s {
	case SourceOther, SourceRouter, SourceSwitch, SourceHost, SourceCard, SourcePort,
		SourceSlotThreshold, SourcePortThreshold, SourceVirtualMachine, SourceVirtualNetworkFunction:
		return true
	}
	return false
}

// VfStatus is the virtual function status reported with faults.
type VfStatus string

const (
	VfStatusActive                VfStatus = "Active"
	VfStatusIdle                  VfStatus = "Idle"
	VfStatusPreparingToTerminate  VfStatus = "Preparing to terminate"
	VfStatusReadyToTerminate      VfStatus = "Ready to terminate"
	VfStatusRequestingTermination VfStatus = "Requesting termination"
)

func (s VfStatus) valid() bool {
	switch s {
	case VfStatusActive, VfStatusIdle, VfStatusPreparingToTerminate,
		VfStatusReadyToTerminate, VfStatusRequestingTermination:
		return true
	}
	return false
}

// EntityState is the state of an interface in state change events.
type EntityState string

const (
	StateInService    EntityState = "inService"
	StateMaintenance  EntityState = "maintenance"
	StateOutOfService EntityState = "outOfService"
)

func (s EntityState) valid() bool {
	switch s {
	case StateInService, StateMaintenance, StateOutOfService:
		return true
	}
	return false
}

// SyslogSeverity is the syslog message severity name.
type SyslogSeverity string

const (
	SyslogAlert     SyslogSeverity = "Alert"
	SyslogCritical  SyslogSeverity = "Critical"
	SyslogDebug     SyslogSeverity = "Debug"
	SyslogEmergency SyslogSeverity = "Emergency"
	SyslogError     SyslogSeverity = "Error"
	SyslogInfo      SyslogSeverity = "Info"
	SyslogNotice    SyslogSeverity = "Notice"
	SyslogWarning   SyslogSeverity = "Warning"
)

func (s SyslogSeverity) valid() bool {
	switch s {
	case SyslogAlert, SyslogCritical, SyslogDebug, SyslogEmergency,
		SyslogError, SyslogInfo, SyslogNotice, SyslogWarning:
		return true
	}
	return false
}

// AlertAction is the threshold crossing alert lifecycle action.
type AlertAction string

const (
	AlertClear    AlertAction = "CLEAR"
	AlertContinue AlertAction = "CONT"
	AlertSet      AlertAction = "SET"
)

func (a AlertAction) valid() bool {
	switch a {
	case AlertClear, AlertContinue, AlertSet:
		return true
	}
	return false
}

// AlertType is the threshold crossing anomaly class.
type AlertType string

const (
	AlertCardAnomaly      AlertType = "CARD-ANOMALY"
	AlertElementAnomaly   AlertType = "ELEMENT-ANOMALY"
	AlertInterfaceAnomaly AlertType = "INTERFACE-ANOMALY"
	AlertServiceAnomaly   AlertType = "SERVICE-ANOMALY"
)

func (a AlertType) valid() bool {
	switch a {
	case AlertCardAnomaly, AlertElementAnomaly, AlertInterfaceAnomaly, AlertServiceAnomaly:
		return true
	}
	return false
}

// Criticality is the threshold crossing parameter criticality.
type Criticality string

const (
	CriticalityCritical Criticality = "CRIT"
	CriticalityMajor    Criticality = "MAJ"
)

func (c Criticality) valid() bool {
	return c == CriticalityCritical || c == CriticalityMajor
}

// FlowDirection is the mobile flow direction.
type FlowDirection string

const (
	FlowForward FlowDirection = "Forward"
	FlowReverse FlowDirection = "Reverse"
)

func (d FlowDirection) valid() bool {
	return d == FlowForward || d == FlowReverse
}

// EndpointDescription tells which call side a VQM summary describes.
type EndpointDescription string

const (
	EndpointCaller EndpointDescription = "Caller"
	EndpointCallee EndpointDescription = "Callee"
)

func (d EndpointDescription) valid() bool {
	return d == EndpointCaller || d == EndpointCallee
}
