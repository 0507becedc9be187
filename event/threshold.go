package event

const thresholdCrossingFieldsVersion = "2.0"

// ThresholdCrossingAlert reports a metric crossing a configured threshold.
type ThresholdCrossingAlert struct {
	Header

	action              AlertAction
	description         string
	alertType           AlertType
	severity            Severity
	collectionTimestamp string
	eventStartTimestamp string

	alertValue        Optional[string]
	dataCollector     Optional[string]
	elementType       Optional[string]
	interfaceName     Optional[string]
	networkService    Optional[string]
	possibleRootCause Optional[string]
	associatedAlerts  []string
	parameters        []*AlertParameter
	additionalFields  KeyValueList
}

// NewThresholdCrossingAlert creates a threshold crossing alert.
// Timestamps are collector-formatted strings, e.g. "Mon, 15 Jan 2024 10:00:00 +0000".
func NewThresholdCrossingAlert(
	name, id string,
	action AlertAction,
	description string,
	alertType AlertType,
	severity Severity,
	collectionTimestamp, eventStartTimestamp string,
) *ThresholdCrossingAlert {
	t := &ThresholdCrossingAlert{
		action:              action,
		description:         description,
		alertType:           alertType,
		severity:            severity,
		collectionTimestamp: collectionTimestamp,
		eventStartTimestamp: eventStartTimestamp,
	}
	t.initHeader(DomainThreshold, name, id)
	return t
}

// SetAlertValue sets the value that crossed the threshold.
func (t *ThresholdCrossingAlert) SetAlertValue(value string) *ThresholdCrossingAlert {
	t.alertValue.Set(value)
	return t
}

// SetDataCollector sets the name of the data collector.
func (t *ThresholdCrossingAlert) SetDataCollector(collector string) *ThresholdCrossingAlert {
	t.dataCollector.Set(collector)
	return t
}

// SetElementType sets the type of network element.
func (t *ThresholdCrossingAlert) SetElementType(elementType string) *ThresholdCrossingAlert {
	t.elementType.Set(elementType)
	return t
}

// SetInterfaceName sets the physical or logical port name.
func (t *ThresholdCrossingAlert) SetInterfaceName(name string) *ThresholdCrossingAlert {
	t.interfaceName.Set(name)
	return t
}

// SetNetworkService sets the network service name.
func (t *ThresholdCrossingAlert) SetNetworkService(service string) *ThresholdCrossingAlert {
	t.networkService.Set(service)
	return t
}

// SetPossibleRootCause sets the suspected root cause.
func (t *ThresholdCrossingAlert) SetPossibleRootCause(cause string) *ThresholdCrossingAlert {
	t.possibleRootCause.Set(cause)
	return t
}

// AddAssociatedAlert appends one associated alert id.
func (t *ThresholdCrossingAlert) AddAssociatedAlert(alertID string) *ThresholdCrossingAlert {
	t.associatedAlerts = append(t.associatedAlerts, alertID)
	return t
}

// AddParameter appends one performance counter parameter and returns it.
func (t *ThresholdCrossingAlert) AddParameter(criticality Criticality, thresholdCrossed string) *AlertParameter {
	p := &AlertParameter{criticality: criticality, thresholdCrossed: thresholdCrossed}
	t.parameters = append(t.parameters, p)
	return p
}

// AddField appends one additional name/value pair.
func (t *ThresholdCrossingAlert) AddField(name, value string) *ThresholdCrossingAlert {
	t.additionalFields.Add(name, value)
	return t
}

// AlertParameter is one entry of additionalParameters.
type AlertParameter struct {
	criticality      Criticality
	thresholdCrossed string
	hashMap          KeyValueList
}

// Add appends one counter name/value pair.
func (p *AlertParameter) Add(name, value string) *AlertParameter {
	p.hashMap.Add(name, value)
	return p
}
