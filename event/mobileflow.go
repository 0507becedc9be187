package event

const mobileFlowFieldsVersion = "2.0"

// MobileFlow reports one mobile data flow observed by the VNF.
type MobileFlow struct {
	Header

	direction               FlowDirection
	metrics                 *GTPFlowMetrics
	ipProtocolType          string
	ipVersion               string
	otherEndpointIPAddress  string
	otherEndpointPort       int
	reportingEndpointIPAddr string
	reportingEndpointPort   int

	appProtocolType       Optional[string]
	appProtocolVersion    Optional[string]
	applicationType       Optional[string]
	cid                   Optional[string]
	connectionType        Optional[string]
	ecgi                  Optional[string]
	gtpProtocolType       Optional[string]
	gtpVersion            Optional[string]
	httpHeader            Optional[string]
	imei                  Optional[string]
	imsi                  Optional[string]
	lac                   Optional[string]
	mcc                   Optional[string]
	mnc                   Optional[string]
	msisdn                Optional[string]
	otherFunctionalRole   Optional[string]
	rac                   Optional[string]
	radioAccessTechnology Optional[string]
	sac                   Optional[string]
	samplingAlgorithm     Optional[int]
	tac                   Optional[string]
	tunnelID              Optional[string]
	vlanID                Optional[string]
	additionalFields      KeyValueList
}

// NewMobileFlow creates a mobile flow event. metrics is mandatory; a nil
// value is reported by Serialize as a missing gtpPerFlowMetrics block.
func NewMobileFlow(
	name, id string,
	direction FlowDirection,
	metrics *GTPFlowMetrics,
	ipProtocolType, ipVersion string,
	otherEndpointIPAddress string, otherEndpointPort int,
	reportingEndpointIPAddr string, reportingEndpointPort int,
) *MobileFlow {
	m := &MobileFlow{
		direction:               direction,
		metrics:                 metrics,
		ipProtocolType:          ipProtocolType,
		ipVersion:               ipVersion,
		otherEndpointIPAddress:  otherEndpointIPAddress,
		otherEndpointPort:       otherEndpointPort,
		reportingEndpointIPAddr: reportingEndpointIPAddr,
		reportingEndpointPort:   reportingEndpointPort,
	}
	m.initHeader(DomainMobileFlow, name, id)
	return m
}

// Metrics returns the per-flow GTP metrics.
func (m *MobileFlow) Metrics() *GTPFlowMetrics {
	return m.metrics
}

func (m *MobileFlow) setString(field *Optional[string], value string) *MobileFlow {
	field.Set(value)
	return m
}

// SetAppProtocolType sets the application protocol type.
func (m *MobileFlow) SetAppProtocolType(v string) *MobileFlow {
	return m.setString(&m.appProtocolType, v)
}

// SetAppProtocolVersion sets the application protocol version.
func (m *MobileFlow) SetAppProtocolVersion(v string) *MobileFlow {
	return m.setString(&m.appProtocolVersion, v)
}

// SetApplicationType sets the application type.
func (m *MobileFlow) SetApplicationType(v string) *MobileFlow {
	return m.setString(&m.applicationType, v)
}

// SetCid sets the cell id.
func (m *MobileFlow) SetCid(v string) *MobileFlow { return m.setString(&m.cid, v) }

// SetConnectionType sets the connection type, e.g. "S1-U".
func (m *MobileFlow) SetConnectionType(v string) *MobileFlow {
	return m.setString(&m.connectionType, v)
}

// SetEcgi sets the evolved cell global id.
func (m *MobileFlow) SetEcgi(v string) *MobileFlow { return m.setString(&m.ecgi, v) }

// SetGtpProtocolType sets the GTP protocol type.
func (m *MobileFlow) SetGtpProtocolType(v string) *MobileFlow {
	return m.setString(&m.gtpProtocolType, v)
}

// SetGtpVersion sets the GTP version.
func (m *MobileFlow) SetGtpVersion(v string) *MobileFlow { return m.setString(&m.gtpVersion, v) }

// SetHTTPHeader sets the HTTP request header if the flow is HTTP.
func (m *MobileFlow) SetHTTPHeader(v string) *MobileFlow { return m.setString(&m.httpHeader, v) }

// SetImei sets the IMEI.
func (m *MobileFlow) SetImei(v string) *MobileFlow { return m.setString(&m.imei, v) }

// SetImsi sets the IMSI.
func (m *MobileFlow) SetImsi(v string) *MobileFlow { return m.setString(&m.imsi, v) }

// SetLac sets the location area code.
func (m *MobileFlow) SetLac(v string) *MobileFlow { return m.setString(&m.lac, v) }

// SetMcc sets the mobile country code.
func (m *MobileFlow) SetMcc(v string) *MobileFlow { return m.setString(&m.mcc, v) }

// SetMnc sets the mobile network code.
func (m *MobileFlow) SetMnc(v string) *MobileFlow { return m.setString(&m.mnc, v) }

// SetMsisdn sets the MSISDN.
func (m *MobileFlow) SetMsisdn(v string) *MobileFlow { return m.setString(&m.msisdn, v) }

// SetOtherFunctionalRole sets the functional role of the other endpoint.
func (m *MobileFlow) SetOtherFunctionalRole(v string) *MobileFlow {
	return m.setString(&m.otherFunctionalRole, v)
}

// SetRac sets the routing area code.
func (m *MobileFlow) SetRac(v string) *MobileFlow { return m.setString(&m.rac, v) }

// SetRadioAccessTechnology sets the radio access technology.
func (m *MobileFlow) SetRadioAccessTechnology(v string) *MobileFlow {
	return m.setString(&m.radioAccessTechnology, v)
}

// SetSac sets the service area code.
func (m *MobileFlow) SetSac(v string) *MobileFlow { return m.setString(&m.sac, v) }

// SetSamplingAlgorithm sets the sampling algorithm id.
func (m *MobileFlow) SetSamplingAlgorithm(v int) *MobileFlow {
	m.samplingAlgorithm.Set(v)
	return m
}

// SetTac sets the tracking area code.
func (m *MobileFlow) SetTac(v string) *MobileFlow { return m.setString(&m.tac, v) }

// SetTunnelID sets the tunnel identifier.
func (m *MobileFlow) SetTunnelID(v string) *MobileFlow { return m.setString(&m.tunnelID, v) }

// SetVlanID sets the VLAN identifier.
func (m *MobileFlow) SetVlanID(v string) *MobileFlow { return m.setString(&m.vlanID, v) }

// AddField appends one additional name/value pair.
func (m *MobileFlow) AddField(name, value string) *MobileFlow {
	m.additionalFields.Add(name, value)
	return m
}

// GTPFlowMetrics is the gtpPerFlowMetrics block. The counters passed to
// NewGTPFlowMetrics are mandatory; the rest are set individually.
type GTPFlowMetrics struct {
	avgBitErrorRate                  float64
	avgPacketDelayVariation          float64
	avgPacketLatency                 int
	avgReceiveThroughput             float64
	avgTransmitThroughput            float64
	flowActivationEpoch              int64
	flowActivationMicrosec           int64
	flowDeactivationEpoch            int64
	flowDeactivationMicrosec         int64
	flowDeactivationTime             string
	flowStatus                       string
	maxPacketDelayVariation          int
	numActivationFailures            int
	numBitErrors                     int
	numBytesReceived                 int64
	numBytesTransmitted              int64
	numDroppedPackets                int
	numL7BytesReceived               int64
	numL7BytesTransmitted            int64
	numLostPackets                   int
	numOutOfOrderPackets             int
	numPacketErrors                  int
	numPacketsReceivedExclRetrans    int64
	numPacketsReceivedInclRetrans    int64
	numPacketsTransmittedInclRetrans int64
	numRetries                       int
	numTimeouts                      int
	numTunneledL7BytesReceived       int64
	roundTripTime                    int
	timeToFirstByte                  int

	durConnectionFailedStatus Optional[int]
	durTunnelFailedStatus     Optional[int]
	flowActivatedBy           Optional[string]
	flowActivationTime        Optional[string]
	flowDeactivatedBy         Optional[string]
	gtpConnectionStatus       Optional[string]
	gtpTunnelStatus           Optional[string]
	largePacketRtt            Optional[int]
	largePacketThreshold      Optional[float64]
	maxReceiveBitRate         Optional[int]
	maxTransmitBitRate        Optional[int]
	numGtpEchoFailures        Optional[int]
	numGtpTunnelErrors        Optional[int]
	numHTTPErrors             Optional[int]
}

// GTPCounters groups the mandatory gtpPerFlowMetrics values.
type GTPCounters struct {
	AvgBitErrorRate                  float64
	AvgPacketDelayVariation          float64
	AvgPacketLatency                 int
	AvgReceiveThroughput             float64
	AvgTransmitThroughput            float64
	FlowActivationEpoch              int64
	FlowActivationMicrosec           int64
	FlowDeactivationEpoch            int64
	FlowDeactivationMicrosec         int64
	FlowDeactivationTime             string
	FlowStatus                       string
	MaxPacketDelayVariation          int
	NumActivationFailures            int
	NumBitErrors                     int
	NumBytesReceived                 int64
	NumBytesTransmitted              int64
	NumDroppedPackets                int
	NumL7BytesReceived               int64
	NumL7BytesTransmitted            int64
	NumLostPackets                   int
	NumOutOfOrderPackets             int
	NumPacketErrors                  int
	NumPacketsReceivedExclRetrans    int64
	NumPacketsReceivedInclRetrans    int64
	NumPacketsTransmittedInclRetrans int64
	NumRetries                       int
	NumTimeouts                      int
	NumTunneledL7BytesReceived       int64
	RoundTripTime                    int
	TimeToFirstByte                  int
}

// NewGTPFlowMetrics creates the per-flow metrics block from its mandatory counters.
func NewGTPFlowMetrics(c GTPCounters) *GTPFlowMetrics {
	return &GTPFlowMetrics{
		avgBitErrorRate:                  c.AvgBitErrorRate,
		avgPacketDelayVariation:          c.AvgPacketDelayVariation,
		avgPacketLatency:                 c.AvgPacketLatency,
		avgReceiveThroughput:             c.AvgReceiveThroughput,
		avgTransmitThroughput:            c.AvgTransmitThroughput,
		flowActivationEpoch:              c.FlowActivationEpoch,
		flowActivationMicrosec:           c.FlowActivationMicrosec,
		flowDeactivationEpoch:            c.FlowDeactivationEpoch,
		flowDeactivationMicrosec:         c.FlowDeactivationMicrosec,
		flowDeactivationTime:             c.FlowDeactivationTime,
		flowStatus:                       c.FlowStatus,
		maxPacketDelayVariation:          c.MaxPacketDelayVariation,
		numActivationFailures:            c.NumActivationFailures,
		numBitErrors:                     c.NumBitErrors,
		numBytesReceived:                 c.NumBytesReceived,
		numBytesTransmitted:              c.NumBytesTransmitted,
		numDroppedPackets:                c.NumDroppedPackets,
		numL7BytesReceived:               c.NumL7BytesReceived,
		numL7BytesTransmitted:            c.NumL7BytesTransmitted,
		numLostPackets:                   c.NumLostPackets,
		numOutOfOrderPackets:             c.NumOutOfOrderPackets,
		numPacketErrors:                  c.NumPacketErrors,
		numPacketsReceivedExclRetrans:    c.NumPacketsReceivedExclRetrans,
		numPacketsReceivedInclRetrans:    c.NumPacketsReceivedInclRetrans,
		numPacketsTransmittedInclRetrans: c.NumPacketsTransmittedInclRetrans,
		numRetries:                       c.NumRetries,
		numTimeouts:                      c.NumTimeouts,
		numTunneledL7BytesReceived:       c.NumTunneledL7BytesReceived,
		roundTripTime:                    c.RoundTripTime,
		timeToFirstByte:                  c.TimeToFirstByte,
	}
}

// SetConnectionFailedDuration sets how long the connection was in failed state.
func (g *GTPFlowMetrics) SetConnectionFailedDuration(v int) *GTPFlowMetrics {
	g.durConnectionFailedStatus.Set(v)
	return g
}

// SetTunnelFailedDuration sets how long the tunnel was in failed state.
func (g *GTPFlowMetrics) SetTunnelFailedDuration(v int) *GTPFlowMetrics {
	g.durTunnelFailedStatus.Set(v)
	return g
}

// SetActivatedBy sets the endpoint that activated the flow.
func (g *GTPFlowMetrics) SetActivatedBy(v string) *GTPFlowMetrics {
	g.flowActivatedBy.Set(v)
	return g
}

// SetActivationTime sets the flow activation time string.
func (g *GTPFlowMetrics) SetActivationTime(v string) *GTPFlowMetrics {
	g.flowActivationTime.Set(v)
	return g
}

// SetDeactivatedBy sets the endpoint that deactivated the flow.
func (g *GTPFlowMetrics) SetDeactivatedBy(v string) *GTPFlowMetrics {
	g.flowDeactivatedBy.Set(v)
	return g
}

// SetConnectionStatus sets the GTP connection status.
func (g *GTPFlowMetrics) SetConnectionStatus(v string) *GTPFlowMetrics {
	g.gtpConnectionStatus.Set(v)
	return g
}

// SetTunnelStatus sets the GTP tunnel status.
func (g *GTPFlowMetrics) SetTunnelStatus(v string) *GTPFlowMetrics {
	g.gtpTunnelStatus.Set(v)
	return g
}

// SetLargePacket sets the large packet round trip time and threshold.
func (g *GTPFlowMetrics) SetLargePacket(rtt int, threshold float64) *GTPFlowMetrics {
	g.largePacketRtt.Set(rtt)
	g.largePacketThreshold.Set(threshold)
	return g
}

// SetMaxBitRates sets the maximum receive and transmit bit rates.
func (g *GTPFlowMetrics) SetMaxBitRates(receive, transmit int) *GTPFlowMetrics {
	g.maxReceiveBitRate.Set(receive)
	g.maxTransmitBitRate.Set(transmit)
	return g
}

// SetGtpEchoFailures sets the number of GTP echo failures.
func (g *GTPFlowMetrics) SetGtpEchoFailures(v int) *GTPFlowMetrics {
	g.numGtpEchoFailures.Set(v)
	return g
}

// SetGtpTunnelErrors sets the number of GTP tunnel errors.
func (g *GTPFlowMetrics) SetGtpTunnelErrors(v int) *GTPFlowMetrics {
	g.numGtpTunnelErrors.Set(v)
	return g
}

// SetHTTPErrors sets the number of HTTP errors.
func (g *GTPFlowMetrics) SetHTTPErrors(v int) *GTPFlowMetrics {
	g.numHTTPErrors.Set(v)
	return g
}
