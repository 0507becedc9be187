package event

const (
	sipSignalingFieldsVersion = "1.0"
	voiceQualityFieldsVersion = "1.0"
	maxPort                   = 65535
)

// vendorVnfName is the vendorVnfNameFields block shared by the signaling variants.
type vendorVnfName struct {
	vendorName   string
	vfModuleName Optional[string]
	vnfName      Optional[string]
}

// SipSignaling reports one SIP signaling exchange.
type SipSignaling struct {
	Header

	vendor          vendorVnfName
	correlator      string
	localIPAddress  string
	localPort       int
	remoteIPAddress string
	remotePort      int

	compressedSip         Optional[string]
	summarySip            Optional[string]
	additionalInformation KeyValueList
}

// NewSipSignaling creates a SIP signaling event.
func NewSipSignaling(
	name, id string,
	vendorName, correlator string,
	localIPAddress string, localPort int,
	remoteIPAddress string, remotePort int,
) *SipSignaling {
	s := &SipSignaling{
		vendor:          vendorVnfName{vendorName: vendorName},
		correlator:      correlator,
		localIPAddress:  localIPAddress,
		localPort:       localPort,
		remoteIPAddress: remoteIPAddress,
		remotePort:      remotePort,
	}
	s.initHeader(DomainSIP, name, id)
	return s
}

// SetVfModuleName sets the vendor VF module name.
func (s *SipSignaling) SetVfModuleName(name string) *SipSignaling {
	s.vendor.vfModuleName.Set(name)
	return s
}

// SetVnfName sets the vendor VNF name.
func (s *SipSignaling) SetVnfName(name string) *SipSignaling {
	s.vendor.vnfName.Set(name)
	return s
}

// SetCompressedSip sets the full SIP request/response.
func (s *SipSignaling) SetCompressedSip(sip string) *SipSignaling {
	s.compressedSip.Set(sip)
	return s
}

// SetSummarySip sets the SIP method or status line summary.
func (s *SipSignaling) SetSummarySip(summary string) *SipSignaling {
	s.summarySip.Set(summary)
	return s
}

// AddInfo appends one additional information pair.
func (s *SipSignaling) AddInfo(name, value string) *SipSignaling {
	s.additionalInformation.Add(name, value)
	return s
}

// VoiceQuality reports media quality for one call.
type VoiceQuality struct {
	Header

	vendor          vendorVnfName
	calleeSideCodec string
	callerSideCodec string
	correlator      string
	midCallRtcp     string

	phoneNumber           Optional[string]
	summary               *VQMSummary
	additionalInformation KeyValueList
}

// NewVoiceQuality creates a voice quality event.
func NewVoiceQuality(
	name, id string,
	vendorName, calleeSideCodec, callerSideCodec, correlator, midCallRtcp string,
) *VoiceQuality {
	v := &VoiceQuality{
		vendor:          vendorVnfName{vendorName: vendorName},
		calleeSideCodec: calleeSideCodec,
		callerSideCodec: callerSideCodec,
		correlator:      correlator,
		midCallRtcp:     midCallRtcp,
	}
	v.initHeader(DomainVoice, name, id)
	return v
}

// SetVfModuleName sets the vendor VF module name.
func (v *VoiceQuality) SetVfModuleName(name string) *VoiceQuality {
	v.vendor.vfModuleName.Set(name)
	return v
}

// SetVnfName sets the vendor VNF name.
func (v *VoiceQuality) SetVnfName(name string) *VoiceQuality {
	v.vendor.vnfName.Set(name)
	return v
}

// SetPhoneNumber sets the phone number associated with the correlator.
func (v *VoiceQuality) SetPhoneNumber(number string) *VoiceQuality {
	v.phoneNumber.Set(number)
	return v
}

// SetSummary attaches the end-of-call VQM summary and returns it for further setting.
// Calling it again replaces the previous summary.
func (v *VoiceQuality) SetSummary(adjacencyName string, endpoint EndpointDescription) *VQMSummary {
	v.summary = &VQMSummary{adjacencyName: adjacencyName, endpointDescription: endpoint}
	return v.summary
}

// AddInfo appends one additional information pair.
func (v *VoiceQuality) AddInfo(name, value string) *VoiceQuality {
	v.additionalInformation.Add(name, value)
	return v
}

// VQMSummary is the endOfCallVqmSummaries block.
type VQMSummary struct {
	adjacencyName       string
	endpointDescription EndpointDescription

	endpointJitter              Optional[int]
	endpointRtpOctetsDiscarded  Optional[int]
	endpointRtpOctetsReceived   Optional[int]
	endpointRtpOctetsSent       Optional[int]
	endpointRtpPacketsDiscarded Optional[int]
	endpointRtpPacketsReceived  Optional[int]
	endpointRtpPacketsSent      Optional[int]
	localJitter                 Optional[int]
	localRtpOctetsDiscarded     Optional[int]
	localRtpOctetsReceived      Optional[int]
	localRtpOctetsSent          Optional[int]
	localRtpPacketsDiscarded    Optional[int]
	localRtpPacketsReceived     Optional[int]
	localRtpPacketsSent         Optional[int]
	mosCqe                      Optional[float64]
	packetsLost                 Optional[int]
	packetLossPercent           Optional[float64]
	rFactor                     Optional[int]
	roundTripDelay              Optional[int]
}

// SetEndpointJitter sets the jitter seen by the far endpoint.
func (q *VQMSummary) SetEndpointJitter(v int) *VQMSummary {
	q.endpointJitter.Set(v)
	return q
}

// SetEndpointRtpOctets sets the far endpoint RTP octet counters.
func (q *VQMSummary) SetEndpointRtpOctets(discarded, received, sent int) *VQMSummary {
	q.endpointRtpOctetsDiscarded.Set(discarded)
	q.endpointRtpOctetsReceived.Set(received)
	q.endpointRtpOctetsSent.Set(sent)
	return q
}

// SetEndpointRtpPackets sets the far endpoint RTP packet counters.
func (q *VQMSummary) SetEndpointRtpPackets(discarded, received, sent int) *VQMSummary {
	q.endpointRtpPacketsDiscarded.Set(discarded)
	q.endpointRtpPacketsReceived.Set(received)
	q.endpointRtpPacketsSent.Set(sent)
	return q
}

// SetLocalJitter sets the local jitter.
func (q *VQMSummary) SetLocalJitter(v int) *VQMSummary {
	q.localJitter.Set(v)
	return q
}

// SetLocalRtpOctets sets the local RTP octet counters.
func (q *VQMSummary) SetLocalRtpOctets(discarded, received, sent int) *VQMSummary {
	q.localRtpOctetsDiscarded.Set(discarded)
	q.localRtpOctetsReceived.Set(received)
	q.localRtpOctetsSent.Set(sent)
	return q
}

// SetLocalRtpPackets sets the local RTP packet counters.
func (q *VQMSummary) SetLocalRtpPackets(discarded, received, sent int) *VQMSummary {
	q.localRtpPacketsDiscarded.Set(discarded)
	q.localRtpPacketsReceived.Set(received)
	q.localRtpPacketsSent.Set(sent)
	return q
}

// SetMosCqe sets the MOS conversational quality estimate (1..5).
func (q *VQMSummary) SetMosCqe(v float64) *VQMSummary {
	q.mosCqe.Set(v)
	return q
}

// SetPacketsLost sets the lost packet count.
func (q *VQMSummary) SetPacketsLost(v int) *VQMSummary {
	q.packetsLost.Set(v)
	return q
}

// SetPacketLossPercent sets the packet loss percentage.
func (q *VQMSummary) SetPacketLossPercent(v float64) *VQMSummary {
	q.packetLossPercent.Set(v)
	return q
}

// SetRFactor sets the R-factor (0..100).
func (q *VQMSummary) SetRFactor(v int) *VQMSummary {
	q.rFactor.Set(v)
	return q
}

// SetRoundTripDelay sets the round trip delay in milliseconds.
func (q *VQMSummary) SetRoundTripDelay(v int) *VQMSummary {
	q.roundTripDelay.Set(v)
	return q
}
