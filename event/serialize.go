package event

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"vesagent/wire"
)

var errNilEvent = errors.New("serialize: nil event")

// Serialize validates an event and renders it into its immutable wire form.
// Params: ev any variant built by this package.
// Returns: wire event, *ValidationError for the first violated rule, or an encode error.
//
// Serialize only reads the event, so it is safe to call from many goroutines
// on distinct events.
func Serialize(ev Event) (*wire.Event, error) {
	if ev == nil {
		return nil, errNilEvent
	}
	h := ev.EventHeader()
	e := &encoder{domain: h.domain}

	doc := wire.NewObject()
	doc.Set("commonEventHeader", e.header(h))

	switch v := ev.(type) {
	case *Fault:
		doc.Set("faultFields", e.fault(v))
	case *StateChange:
		doc.Set("stateChangeFields", e.stateChange(v))
	case *Measurement:
		doc.Set("measurementsForVfScalingFields", e.measurement(v))
	case *Syslog:
		doc.Set("syslogFields", e.syslog(v))
	case *Heartbeat:
	case *HeartbeatField:
		doc.Set("heartbeatFields", e.heartbeatField(v))
	case *SipSignaling:
		doc.Set("sipSignalingFields", e.sipSignaling(v))
	case *VoiceQuality:
		doc.Set("voiceQualityFields", e.voiceQuality(v))
	case *ThresholdCrossingAlert:
		doc.Set("thresholdCrossingAlertFields", e.thresholdCrossing(v))
	case *MobileFlow:
		doc.Set("mobileFlowFields", e.mobileFlow(v))
	case *Other:
		doc.Set("otherFields", e.other(v))
	default:
		return nil, fmt.Errorf("serialize: unsupported event type %T", ev)
	}

	if e.err != nil {
		return nil, e.err
	}
	return wire.NewEvent(string(h.domain), h.id, h.name, doc)
}

// encoder builds wire objects and keeps the first validation failure.
type encoder struct {
	domain Domain
	prefix string
	err    *ValidationError
}

type number interface {
	~int | ~int64 | ~float64
}

type enumValue interface {
	~string
	valid() bool
}

func (e *encoder) fail(kind ValidationKind, field, value string) {
	if e.err != nil {
		return
	}
	e.err = &ValidationError{Kind: kind, Domain: e.domain, Field: e.prefix + field, Value: value}
}

// within runs fn with field names qualified by prefix, e.g. "cpuUsageArray[0].".
func (e *encoder) within(prefix string, fn func()) {
	saved := e.prefix
	e.prefix = saved + prefix
	fn()
	e.prefix = saved
}

func (e *encoder) str(obj *wire.Object, name, value string) {
	if value == "" {
		e.fail(MissingField, name, "")
		return
	}
	obj.Set(name, value)
}

func optional[T any](obj *wire.Object, name string, o Optional[T]) {
	if value, ok := o.Get(); ok {
		obj.Set(name, value)
	}
}

func enum[T enumValue](e *encoder, obj *wire.Object, name string, value T) {
	if value == "" {
		e.fail(MissingField, name, "")
		return
	}
	if !value.valid() {
		e.fail(InvalidEnum, name, string(value))
		return
	}
	obj.Set(name, string(value))
}

func optEnum[T enumValue](e *encoder, obj *wire.Object, name string, o Optional[T]) {
	if value, ok := o.Get(); ok {
		enum(e, obj, name, value)
	}
}

func count[T number](e *encoder, obj *wire.Object, name string, value T) {
	f := float64(value)
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		e.fail(OutOfRange, name, fmt.Sprint(value))
		return
	}
	obj.Set(name, value)
}

func optCount[T number](e *encoder, obj *wire.Object, name string, o Optional[T]) {
	if value, ok := o.Get(); ok {
		count(e, obj, name, value)
	}
}

func (e *encoder) bounded(obj *wire.Object, name string, value, lo, hi int) {
	if value < lo || value > hi {
		e.fail(OutOfRange, name, strconv.Itoa(value))
		return
	}
	obj.Set(name, value)
}

func (e *encoder) positive(obj *wire.Object, name string, value float64) {
	if !(value > 0) || math.IsInf(value, 0) {
		e.fail(OutOfRange, name, strconv.FormatFloat(value, 'g', -1, 64))
		return
	}
	obj.Set(name, value)
}

// port emits a port number as the decimal string the collector schema expects.
func (e *encoder) port(obj *wire.Object, name string, value int) {
	if value < 0 || value > maxPort {
		e.fail(OutOfRange, name, strconv.Itoa(value))
		return
	}
	obj.Set(name, strconv.Itoa(value))
}

func pairs(obj *wire.Object, name string, list KeyValueList) {
	if list.Len() == 0 {
		return
	}
	items := make([]*wire.Object, 0, list.Len())
	for _, kv := range list.items {
		items = append(items, wire.NewObject().Set("name", kv.Name).Set("value", kv.Value))
	}
	obj.Set(name, items)
}

func (e *encoder) header(h *Header) *wire.Object {
	obj := wire.NewObject()
	enum(e, obj, "domain", h.domain)
	e.str(obj, "eventId", h.id)
	e.str(obj, "eventName", h.name)
	optional(obj, "eventType", h.eventType)
	count(e, obj, "lastEpochMicrosec", h.lastEpochMicrosec)
	optional(obj, "nfcNamingCode", h.nfcNamingCode)
	optional(obj, "nfNamingCode", h.nfNamingCode)
	enum(e, obj, "priority", h.priority)
	optional(obj, "reportingEntityId", h.reportingEntityID)
	e.str(obj, "reportingEntityName", h.reportingEntityName)
	count(e, obj, "sequence", h.sequence)
	optional(obj, "sourceId", h.sourceID)
	e.str(obj, "sourceName", h.sourceName)
	count(e, obj, "startEpochMicrosec", h.startEpochMicrosec)
	obj.Set("version", headerVersion)

	if h.lastEpochMicrosec < h.startEpochMicrosec {
		e.fail(OutOfRange, "lastEpochMicrosec", strconv.FormatInt(h.lastEpochMicrosec, 10))
	}
	return obj
}

func (e *encoder) fault(f *Fault) *wire.Object {
	obj := wire.NewObject()
	e.str(obj, "alarmCondition", f.condition)
	enum(e, obj, "eventSeverity", f.severity)
	enum(e, obj, "eventSourceType", f.sourceType)
	e.str(obj, "specificProblem", f.specificProblem)
	enum(e, obj, "vfStatus", f.vfStatus)
	obj.Set("faultFieldsVersion", faultFieldsVersion)
	optional(obj, "eventCategory", f.category)
	optional(obj, "alarmInterfaceA", f.interfaceA)
	pairs(obj, "alarmAdditionalInformation", f.additionalInfo)
	return obj
}

func (e *encoder) stateChange(s *StateChange) *wire.Object {
	obj := wire.NewObject()
	enum(e, obj, "newState", s.newState)
	enum(e, obj, "oldState", s.oldState)
	e.str(obj, "stateInterface", s.stateInterface)
	obj.Set("stateChangeFieldsVersion", stateChangeFieldsVersion)
	pairs(obj, "additionalFields", s.additionalFields)
	return obj
}

func (e *encoder) heartbeatField(h *HeartbeatField) *wire.Object {
	obj := wire.NewObject()
	if h.interval <= 0 {
		e.fail(OutOfRange, "heartbeatInterval", strconv.Itoa(h.interval))
	} else {
		obj.Set("heartbeatInterval", h.interval)
	}
	obj.Set("heartbeatFieldsVersion", heartbeatFieldsVersion)
	pairs(obj, "additionalFields", h.additionalFields)
	return obj
}

func (e *encoder) syslog(s *Syslog) *wire.Object {
	obj := wire.NewObject()
	enum(e, obj, "eventSourceType", s.sourceType)
	e.str(obj, "syslogMsg", s.message)
	e.str(obj, "syslogTag", s.tag)
	obj.Set("syslogFieldsVersion", syslogFieldsVersion)
	pairs(obj, "additionalFields", s.additionalFields)
	optional(obj, "eventSourceHost", s.sourceHost)
	if facility, ok := s.facility.Get(); ok {
		e.bounded(obj, "syslogFacility", facility, 0, maxSyslogFacility)
	}
	if pri, ok := s.pri.Get(); ok {
		e.bounded(obj, "syslogPri", pri, 0, maxSyslogPri)
	}
	optional(obj, "syslogProc", s.proc)
	optCount(e, obj, "syslogProcId", s.procID)
	optional(obj, "syslogSData", s.structuredData)
	optEnum(e, obj, "syslogSev", s.severity)
	optCount(e, obj, "syslogVer", s.version)
	return obj
}

func (e *encoder) other(o *Other) *wire.Object {
	obj := wire.NewObject()
	obj.Set("otherFieldsVersion", otherFieldsVersion)
	pairs(obj, "nameValuePairs", o.fields)
	return obj
}

func (e *encoder) vendorVnfName(v vendorVnfName) *wire.Object {
	obj := wire.NewObject()
	e.within("vendorVnfNameFields.", func() {
		e.str(obj, "vendorName", v.vendorName)
		optional(obj, "vfModuleName", v.vfModuleName)
		optional(obj, "vnfName", v.vnfName)
	})
	return obj
}

func (e *encoder) sipSignaling(s *SipSignaling) *wire.Object {
	obj := wire.NewObject()
	e.str(obj, "correlator", s.correlator)
	e.str(obj, "localIpAddress", s.localIPAddress)
	e.port(obj, "localPort", s.localPort)
	e.str(obj, "remoteIpAddress", s.remoteIPAddress)
	e.port(obj, "remotePort", s.remotePort)
	obj.Set("sipSignalingFieldsVersion", sipSignalingFieldsVersion)
	obj.Set("vendorVnfNameFields", e.vendorVnfName(s.vendor))
	pairs(obj, "additionalInformation", s.additionalInformation)
	optional(obj, "compressedSip", s.compressedSip)
	optional(obj, "summarySip", s.summarySip)
	return obj
}

func (e *encoder) voiceQuality(v *VoiceQuality) *wire.Object {
	obj := wire.NewObject()
	e.str(obj, "calleeSideCodec", v.calleeSideCodec)
	e.str(obj, "callerSideCodec", v.callerSideCodec)
	e.str(obj, "correlator", v.correlator)
	e.str(obj, "midCallRtcp", v.midCallRtcp)
	obj.Set("vendorVnfNameFields", e.vendorVnfName(v.vendor))
	obj.Set("voiceQualityFieldsVersion", voiceQualityFieldsVersion)
	pairs(obj, "additionalInformation", v.additionalInformation)
	if v.summary != nil {
		obj.Set("endOfCallVqmSummaries", e.vqmSummary(v.summary))
	}
	optional(obj, "phoneNumber", v.phoneNumber)
	return obj
}

func (e *encoder) vqmSummary(q *VQMSummary) *wire.Object {
	obj := wire.NewObject()
	e.within("endOfCallVqmSummaries.", func() {
		e.str(obj, "adjacencyName", q.adjacencyName)
		enum(e, obj, "endpointDescription", q.endpointDescription)
		optCount(e, obj, "endpointJitter", q.endpointJitter)
		optCount(e, obj, "endpointRtpOctetsDiscarded", q.endpointRtpOctetsDiscarded)
		optCount(e, obj, "endpointRtpOctetsReceived", q.endpointRtpOctetsReceived)
		optCount(e, obj, "endpointRtpOctetsSent", q.endpointRtpOctetsSent)
		optCount(e, obj, "endpointRtpPacketsDiscarded", q.endpointRtpPacketsDiscarded)
		optCount(e, obj, "endpointRtpPacketsReceived", q.endpointRtpPacketsReceived)
		optCount(e, obj, "endpointRtpPacketsSent", q.endpointRtpPacketsSent)
		optCount(e, obj, "localJitter", q.localJitter)
		optCount(e, obj, "localRtpOctetsDiscarded", q.localRtpOctetsDiscarded)
		optCount(e, obj, "localRtpOctetsReceived", q.localRtpOctetsReceived)
		optCount(e, obj, "localRtpOctetsSent", q.localRtpOctetsSent)
		optCount(e, obj, "localRtpPacketsDiscarded", q.localRtpPacketsDiscarded)
		optCount(e, obj, "localRtpPacketsReceived", q.localRtpPacketsReceived)
		optCount(e, obj, "localRtpPacketsSent", q.localRtpPacketsSent)
		optCount(e, obj, "mosCqe", q.mosCqe)
		optCount(e, obj, "packetsLost", q.packetsLost)
		optCount(e, obj, "packetLossPercent", q.packetLossPercent)
		optCount(e, obj, "rFactor", q.rFactor)
		optCount(e, obj, "roundTripDelay", q.roundTripDelay)
	})
	return obj
}

func (e *encoder) thresholdCrossing(t *ThresholdCrossingAlert) *wire.Object {
	obj := wire.NewObject()
	enum(e, obj, "alertAction", t.action)
	e.str(obj, "alertDescription", t.description)
	enum(e, obj, "alertType", t.alertType)
	e.str(obj, "collectionTimestamp", t.collectionTimestamp)
	enum(e, obj, "eventSeverity", t.severity)
	e.str(obj, "eventStartTimestamp", t.eventStartTimestamp)
	obj.Set("thresholdCrossingFieldsVersion", thresholdCrossingFieldsVersion)
	pairs(obj, "additionalFields", t.additionalFields)
	if len(t.parameters) > 0 {
		params := make([]*wire.Object, 0, len(t.parameters))
		for idx, p := range t.parameters {
			param := wire.NewObject()
			e.within(fmt.Sprintf("additionalParameters[%d].", idx), func() {
				enum(e, param, "criticality", p.criticality)
				pairs(param, "hashMap", p.hashMap)
				e.str(param, "thresholdCrossed", p.thresholdCrossed)
			})
			params = append(params, param)
		}
		obj.Set("additionalParameters", params)
	}
	optional(obj, "alertValue", t.alertValue)
	if len(t.associatedAlerts) > 0 {
		ids := make([]string, len(t.associatedAlerts))
		copy(ids, t.associatedAlerts)
		obj.Set("associatedAlertIdList", ids)
	}
	optional(obj, "dataCollector", t.dataCollector)
	optional(obj, "elementType", t.elementType)
	optional(obj, "interfaceName", t.interfaceName)
	optional(obj, "networkService", t.networkService)
	optional(obj, "possibleRootCause", t.possibleRootCause)
	return obj
}

func (e *encoder) mobileFlow(m *MobileFlow) *wire.Object {
	obj := wire.NewObject()
	enum(e, obj, "flowDirection", m.direction)
	if m.metrics == nil {
		e.fail(MissingField, "gtpPerFlowMetrics", "")
	} else {
		obj.Set("gtpPerFlowMetrics", e.gtpMetrics(m.metrics))
	}
	e.str(obj, "ipProtocolType", m.ipProtocolType)
	e.str(obj, "ipVersion", m.ipVersion)
	e.str(obj, "otherEndpointIpAddress", m.otherEndpointIPAddress)
	e.bounded(obj, "otherEndpointPort", m.otherEndpointPort, 0, maxPort)
	e.str(obj, "reportingEndpointIpAddr", m.reportingEndpointIPAddr)
	e.bounded(obj, "reportingEndpointPort", m.reportingEndpointPort, 0, maxPort)
	obj.Set("mobileFlowFieldsVersion", mobileFlowFieldsVersion)
	pairs(obj, "additionalFields", m.additionalFields)
	optional(obj, "appProtocolType", m.appProtocolType)
	optional(obj, "appProtocolVersion", m.appProtocolVersion)
	optional(obj, "applicationType", m.applicationType)
	optional(obj, "cid", m.cid)
	optional(obj, "connectionType", m.connectionType)
	optional(obj, "ecgi", m.ecgi)
	optional(obj, "gtpProtocolType", m.gtpProtocolType)
	optional(obj, "gtpVersion", m.gtpVersion)
	optional(obj, "httpHeader", m.httpHeader)
	optional(obj, "imei", m.imei)
	optional(obj, "imsi", m.imsi)
	optional(obj, "lac", m.lac)
	optional(obj, "mcc", m.mcc)
	optional(obj, "mnc", m.mnc)
	optional(obj, "msisdn", m.msisdn)
	optional(obj, "otherFunctionalRole", m.otherFunctionalRole)
	optional(obj, "rac", m.rac)
	optional(obj, "radioAccessTechnology", m.radioAccessTechnology)
	optional(obj, "sac", m.sac)
	optCount(e, obj, "samplingAlgorithm", m.samplingAlgorithm)
	optional(obj, "tac", m.tac)
	optional(obj, "tunnelId", m.tunnelID)
	optional(obj, "vlanId", m.vlanID)
	return obj
}

func (e *encoder) gtpMetrics(g *GTPFlowMetrics) *wire.Object {
	obj := wire.NewObject()
	e.within("gtpPerFlowMetrics.", func() {
		count(e, obj, "avgBitErrorRate", g.avgBitErrorRate)
		count(e, obj, "avgPacketDelayVariation", g.avgPacketDelayVariation)
		count(e, obj, "avgPacketLatency", g.avgPacketLatency)
		count(e, obj, "avgReceiveThroughput", g.avgReceiveThroughput)
		count(e, obj, "avgTransmitThroughput", g.avgTransmitThroughput)
		optCount(e, obj, "durConnectionFailedStatus", g.durConnectionFailedStatus)
		optCount(e, obj, "durTunnelFailedStatus", g.durTunnelFailedStatus)
		optional(obj, "flowActivatedBy", g.flowActivatedBy)
		count(e, obj, "flowActivationEpoch", g.flowActivationEpoch)
		count(e, obj, "flowActivationMicrosec", g.flowActivationMicrosec)
		optional(obj, "flowActivationTime", g.flowActivationTime)
		optional(obj, "flowDeactivatedBy", g.flowDeactivatedBy)
		count(e, obj, "flowDeactivationEpoch", g.flowDeactivationEpoch)
		count(e, obj, "flowDeactivationMicrosec", g.flowDeactivationMicrosec)
		e.str(obj, "flowDeactivationTime", g.flowDeactivationTime)
		e.str(obj, "flowStatus", g.flowStatus)
		optional(obj, "gtpConnectionStatus", g.gtpConnectionStatus)
		optional(obj, "gtpTunnelStatus", g.gtpTunnelStatus)
		optCount(e, obj, "largePacketRtt", g.largePacketRtt)
		optCount(e, obj, "largePacketThreshold", g.largePacketThreshold)
		count(e, obj, "maxPacketDelayVariation", g.maxPacketDelayVariation)
		optCount(e, obj, "maxReceiveBitRate", g.maxReceiveBitRate)
		optCount(e, obj, "maxTransmitBitRate", g.maxTransmitBitRate)
		count(e, obj, "numActivationFailures", g.numActivationFailures)
		count(e, obj, "numBitErrors", g.numBitErrors)
		count(e, obj, "numBytesReceived", g.numBytesReceived)
		count(e, obj, "numBytesTransmitted", g.numBytesTransmitted)
		count(e, obj, "numDroppedPackets", g.numDroppedPackets)
		optCount(e, obj, "numGtpEchoFailures", g.numGtpEchoFailures)
		optCount(e, obj, "numGtpTunnelErrors", g.numGtpTunnelErrors)
		optCount(e, obj, "numHttpErrors", g.numHTTPErrors)
		count(e, obj, "numL7BytesReceived", g.numL7BytesReceived)
		count(e, obj, "numL7BytesTransmitted", g.numL7BytesTransmitted)
		count(e, obj, "numLostPackets", g.numLostPackets)
		count(e, obj, "numOutOfOrderPackets", g.numOutOfOrderPackets)
		count(e, obj, "numPacketErrors", g.numPacketErrors)
		count(e, obj, "numPacketsReceivedExclRetrans", g.numPacketsReceivedExclRetrans)
		count(e, obj, "numPacketsReceivedInclRetrans", g.numPacketsReceivedInclRetrans)
		count(e, obj, "numPacketsTransmittedInclRetrans", g.numPacketsTransmittedInclRetrans)
		count(e, obj, "numRetries", g.numRetries)
		count(e, obj, "numTimeouts", g.numTimeouts)
		count(e, obj, "numTunneledL7BytesReceived", g.numTunneledL7BytesReceived)
		count(e, obj, "roundTripTime", g.roundTripTime)
		count(e, obj, "timeToFirstByte", g.timeToFirstByte)
	})
	return obj
}

func (e *encoder) measurement(m *Measurement) *wire.Object {
	obj := wire.NewObject()
	e.positive(obj, "measurementInterval", m.interval)
	obj.Set("measurementsForVfScalingVersion", measurementFieldsVersion)
	pairs(obj, "additionalFields", m.additionalFields)

	if len(m.groups) > 0 {
		groups := make([]*wire.Object, 0, len(m.groups))
		for idx, g := range m.groups {
			group := wire.NewObject()
			e.within(fmt.Sprintf("additionalMeasurements[%d].", idx), func() {
				e.str(group, "name", g.name)
				pairs(group, "arrayOfFields", g.fields)
			})
			groups = append(groups, group)
		}
		obj.Set("additionalMeasurements", groups)
	}

	if len(m.codecUsage) > 0 {
		codecs := make([]*wire.Object, 0, len(m.codecUsage))
		for idx, c := range m.codecUsage {
			codec := wire.NewObject()
			e.within(fmt.Sprintf("codecUsageArray[%d].", idx), func() {
				e.str(codec, "codecIdentifier", c.Codec)
				count(e, codec, "numberInUse", c.InUse)
			})
			codecs = append(codecs, codec)
		}
		obj.Set("codecUsageArray", codecs)
	}

	optCount(e, obj, "concurrentSessions", m.concurrentSessions)
	optCount(e, obj, "configuredEntities", m.configuredEntities)

	if len(m.cpuUsage) > 0 {
		cpus := make([]*wire.Object, 0, len(m.cpuUsage))
		for idx, c := range m.cpuUsage {
			cpus = append(cpus, e.cpuUsage(idx, c))
		}
		obj.Set("cpuUsageArray", cpus)
	}

	if len(m.diskUsage) > 0 {
		disks := make([]*wire.Object, 0, len(m.diskUsage))
		for idx, d := range m.diskUsage {
			disks = append(disks, e.diskUsage(idx, d))
		}
		obj.Set("diskUsageArray", disks)
	}

	if len(m.featureUsage) > 0 {
		features := make([]*wire.Object, 0, len(m.featureUsage))
		for idx, f := range m.featureUsage {
			feature := wire.NewObject()
			e.within(fmt.Sprintf("featureUsageArray[%d].", idx), func() {
				e.str(feature, "featureIdentifier", f.Feature)
				count(e, feature, "featureUtilization", f.Utilization)
			})
			features = append(features, feature)
		}
		obj.Set("featureUsageArray", features)
	}

	if len(m.latencyDistribution) > 0 {
		buckets := make([]*wire.Object, 0, len(m.latencyDistribution))
		for idx, b := range m.latencyDistribution {
			bucket := wire.NewObject()
			e.within(fmt.Sprintf("latencyDistribution[%d].", idx), func() {
				count(e, bucket, "countsInTheBucket", b.counts)
				optCount(e, bucket, "highEndOfLatencyBucket", b.highEnd)
				optCount(e, bucket, "lowEndOfLatencyBucket", b.lowEnd)
				low, lowSet := b.lowEnd.Get()
				high, highSet := b.highEnd.Get()
				if lowSet && highSet && high < low {
					e.fail(OutOfRange, "highEndOfLatencyBucket", strconv.FormatFloat(high, 'g', -1, 64))
				}
			})
			buckets = append(buckets, bucket)
		}
		obj.Set("latencyDistribution", buckets)
	}

	optCount(e, obj, "meanRequestLatency", m.meanRequestLatency)

	if len(m.memoryUsage) > 0 {
		memory := make([]*wire.Object, 0, len(m.memoryUsage))
		for idx, u := range m.memoryUsage {
			memory = append(memory, e.memoryUsage(idx, u))
		}
		obj.Set("memoryUsageArray", memory)
	}

	optCount(e, obj, "numberOfMediaPortsInUse", m.mediaPortsInUse)
	optCount(e, obj, "requestRate", m.requestRate)

	if len(m.vnicPerformance) > 0 {
		vnics := make([]*wire.Object, 0, len(m.vnicPerformance))
		for idx, v := range m.vnicPerformance {
			vnics = append(vnics, e.vnicPerformance(idx, v))
		}
		obj.Set("vNicPerformanceArray", vnics)
	}

	optCount(e, obj, "vnfcScalingMetric", m.vnfcScalingMetric)
	return obj
}

func (e *encoder) cpuUsage(idx int, c *CPUUsage) *wire.Object {
	obj := wire.NewObject()
	e.within(fmt.Sprintf("cpuUsageArray[%d].", idx), func() {
		e.str(obj, "cpuIdentifier", c.id)
		optCount(e, obj, "cpuIdle", c.idle)
		optCount(e, obj, "cpuUsageInterrupt", c.usageInterrupt)
		optCount(e, obj, "cpuUsageNice", c.usageNice)
		optCount(e, obj, "cpuUsageSoftIrq", c.usageSoftIrq)
		optCount(e, obj, "cpuUsageSteal", c.usageSteal)
		optCount(e, obj, "cpuUsageSystem", c.usageSystem)
		optCount(e, obj, "cpuUsageUser", c.usageUser)
		optCount(e, obj, "cpuWait", c.wait)
		count(e, obj, "percentUsage", c.percentUsage)
	})
	return obj
}

func (e *encoder) memoryUsage(idx int, m *MemoryUsage) *wire.Object {
	obj := wire.NewObject()
	e.within(fmt.Sprintf("memoryUsageArray[%d].", idx), func() {
		optCount(e, obj, "memoryBuffered", m.buffered)
		optCount(e, obj, "memoryCached", m.cached)
		optCount(e, obj, "memoryConfigured", m.configured)
		count(e, obj, "memoryFree", m.free)
		optCount(e, obj, "memorySlabRecl", m.slabRecl)
		optCount(e, obj, "memorySlabUnrecl", m.slabUnrecl)
		count(e, obj, "memoryUsed", m.used)
		e.str(obj, "vmIdentifier", m.vmID)
	})
	return obj
}

func (e *encoder) diskUsage(idx int, d *DiskUsage) *wire.Object {
	obj := wire.NewObject()
	e.within(fmt.Sprintf("diskUsageArray[%d].", idx), func() {
		e.str(obj, "diskIdentifier", d.id)
		optCount(e, obj, "diskIoTimeAvg", d.ioTimeAvg)
		optCount(e, obj, "diskMergedReadAvg", d.mergedReadAvg)
		optCount(e, obj, "diskMergedWriteAvg", d.mergedWriteAvg)
		optCount(e, obj, "diskOctetsReadAvg", d.octetsReadAvg)
		optCount(e, obj, "diskOctetsWriteAvg", d.octetsWriteAvg)
		optCount(e, obj, "diskOpsReadAvg", d.opsReadAvg)
		optCount(e, obj, "diskOpsWriteAvg", d.opsWriteAvg)
		optCount(e, obj, "diskTimeReadAvg", d.timeReadAvg)
		optCount(e, obj, "diskTimeWriteAvg", d.timeWriteAvg)
	})
	return obj
}

func (e *encoder) vnicPerformance(idx int, v *VNICPerformance) *wire.Object {
	obj := wire.NewObject()
	e.within(fmt.Sprintf("vNicPerformanceArray[%d].", idx), func() {
		optCount(e, obj, "receivedDiscardedPacketsDelta", v.receivedDiscardedPacketsDelta)
		optCount(e, obj, "receivedErrorPacketsDelta", v.receivedErrorPacketsDelta)
		optCount(e, obj, "receivedOctetsAccumulated", v.receivedOctetsAccumulated)
		optCount(e, obj, "receivedOctetsDelta", v.receivedOctetsDelta)
		optCount(e, obj, "receivedTotalPacketsAccumulated", v.receivedTotalPacketsAccumulated)
		optCount(e, obj, "receivedTotalPacketsDelta", v.receivedTotalPacketsDelta)
		optCount(e, obj, "transmittedDiscardedPacketsDelta", v.transmittedDiscardedPacketsDelta)
		optCount(e, obj, "transmittedErrorPacketsDelta", v.transmittedErrorPacketsDelta)
		optCount(e, obj, "transmittedOctetsAccumulated", v.transmittedOctetsAccumulated)
		optCount(e, obj, "transmittedOctetsDelta", v.transmittedOctetsDelta)
		optCount(e, obj, "transmittedTotalPacketsAccumulated", v.transmittedTotalPacketsAccumulated)
		optCount(e, obj, "transmittedTotalPacketsDelta", v.transmittedTotalPacketsDelta)
		obj.Set("valuesAreSuspect", strconv.FormatBool(v.valuesAreSuspect))
		e.str(obj, "vNicIdentifier", v.id)
	})
	return obj
}
