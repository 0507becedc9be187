package event

const measurementFieldsVersion = "2.1"

// Measurement carries periodic VNF scaling measurements.
type Measurement struct {
	Header

	interval float64

	concurrentSessions  Optional[int]
	configuredEntities  Optional[int]
	meanRequestLatency  Optional[float64]
	mediaPortsInUse     Optional[int]
	requestRate         Optional[float64]
	vnfcScalingMetric   Optional[int]
	cpuUsage            []*CPUUsage
	memoryUsage         []*MemoryUsage
	diskUsage           []*DiskUsage
	vnicPerformance     []*VNICPerformance
	latencyDistribution []*LatencyBucket
	codecUsage          []CodecUse
	featureUsage        []FeatureUse
	groups              []*MeasurementGroup
	additionalFields    KeyValueList
}

// NewMeasurement creates a measurement event covering interval seconds.
func NewMeasurement(name, id string, interval float64) *Measurement {
	m := &Measurement{interval: interval}
	m.initHeader(DomainMeasurement, name, id)
	return m
}

// Interval returns the measurement interval in seconds.
func (m *Measurement) Interval() float64 {
	return m.interval
}

// SetConcurrentSessions sets the number of concurrent sessions.
func (m *Measurement) SetConcurrentSessions(n int) *Measurement {
	m.concurrentSessions.Set(n)
	return m
}

// SetConfiguredEntities sets the number of configured entities.
func (m *Measurement) SetConfiguredEntities(n int) *Measurement {
	m.configuredEntities.Set(n)
	return m
}

// SetMeanRequestLatency sets the mean request latency in milliseconds.
func (m *Measurement) SetMeanRequestLatency(latency float64) *Measurement {
	m.meanRequestLatency.Set(latency)
	return m
}

// SetMediaPortsInUse sets the number of media ports in use.
func (m *Measurement) SetMediaPortsInUse(n int) *Measurement {
	m.mediaPortsInUse.Set(n)
	return m
}

// SetRequestRate sets the request rate per second.
func (m *Measurement) SetRequestRate(rate float64) *Measurement {
	m.requestRate.Set(rate)
	return m
}

// SetVnfcScalingMetric sets the VNFC scaling metric.
func (m *Measurement) SetVnfcScalingMetric(metric int) *Measurement {
	m.vnfcScalingMetric.Set(metric)
	return m
}

// AddCPUUsage appends a per-CPU usage record.
func (m *Measurement) AddCPUUsage(id string, percentUsage float64) *CPUUsage {
	record := &CPUUsage{id: id, percentUsage: percentUsage}
	m.cpuUsage = append(m.cpuUsage, record)
	return record
}

// AddMemoryUsage appends a per-VM memory usage record.
func (m *Measurement) AddMemoryUsage(vmID string, free, used float64) *MemoryUsage {
	record := &MemoryUsage{vmID: vmID, free: free, used: used}
	m.memoryUsage = append(m.memoryUsage, record)
	return record
}

// AddDiskUsage appends a per-disk usage record.
func (m *Measurement) AddDiskUsage(id string) *DiskUsage {
	record := &DiskUsage{id: id}
	m.diskUsage = append(m.diskUsage, record)
	return record
}

// AddVNICPerformance appends a per-vNIC performance record.
func (m *Measurement) AddVNICPerformance(id string, valuesAreSuspect bool) *VNICPerformance {
	record := &VNICPerformance{id: id, valuesAreSuspect: valuesAreSuspect}
	m.vnicPerformance = append(m.vnicPerformance, record)
	return record
}

// AddLatencyBucket appends one latency distribution bucket.
func (m *Measurement) AddLatencyBucket(counts int) *LatencyBucket {
	record := &LatencyBucket{counts: counts}
	m.latencyDistribution = append(m.latencyDistribution, record)
	return record
}

// AddCodecUse appends one codec usage entry.
func (m *Measurement) AddCodecUse(codec string, inUse int) *Measurement {
	m.codecUsage = append(m.codecUsage, CodecUse{Codec: codec, InUse: inUse})
	return m
}

// AddFeatureUse appends one feature utilization entry.
func (m *Measurement) AddFeatureUse(feature string, utilization int) *Measurement {
	m.featureUsage = append(m.featureUsage, FeatureUse{Feature: feature, Utilization: utilization})
	return m
}

// AddGroup appends a named group of additional measurements.
func (m *Measurement) AddGroup(name string) *MeasurementGroup {
	group := &MeasurementGroup{name: name}
	m.groups = append(m.groups, group)
	return group
}

// AddField appends one additional name/value pair.
func (m *Measurement) AddField(name, value string) *Measurement {
	m.additionalFields.Add(name, value)
	return m
}

// CPUUsage is the usage of one CPU over the measurement interval. Values are percentages.
type CPUUsage struct {
	id           string
	percentUsage float64

	idle           Optional[float64]
	usageInterrupt Optional[float64]
	usageNice      Optional[float64]
	usageSoftIrq   Optional[float64]
	usageSteal     Optional[float64]
	usageSystem    Optional[float64]
	usageUser      Optional[float64]
	wait           Optional[float64]
}

// SetIdle sets the idle percentage.
func (c *CPUUsage) SetIdle(v float64) *CPUUsage {
	c.idle.Set(v)
	return c
}

// SetInterrupt sets the hardware interrupt percentage.
func (c *CPUUsage) SetInterrupt(v float64) *CPUUsage {
	c.usageInterrupt.Set(v)
	return c
}

// SetNice sets the nice percentage.
func (c *CPUUsage) SetNice(v float64) *CPUUsage {
	c.usageNice.Set(v)
	return c
}

// SetSoftIrq sets the soft interrupt percentage.
func (c *CPUUsage) SetSoftIrq(v float64) *CPUUsage {
	c.usageSoftIrq.Set(v)
	return c
}

// SetSteal sets the steal percentage.
func (c *CPUUsage) SetSteal(v float64) *CPUUsage {
	c.usageSteal.Set(v)
	return c
}

// SetSystem sets the system percentage.
func (c *CPUUsage) SetSystem(v float64) *CPUUsage {
	c.usageSystem.Set(v)
	return c
}

// SetUser sets the user percentage.
func (c *CPUUsage) SetUser(v float64) *CPUUsage {
	c.usageUser.Set(v)
	return c
}

// SetWait sets the IO wait percentage.
func (c *CPUUsage) SetWait(v float64) *CPUUsage {
	c.wait.Set(v)
	return c
}

// MemoryUsage is the memory state of one VM in kibibytes.
type MemoryUsage struct {
	vmID string
	free float64
	used float64

	buffered   Optional[float64]
	cached     Optional[float64]
	configured Optional[float64]
	slabRecl   Optional[float64]
	slabUnrecl Optional[float64]
}

// SetBuffered sets buffered memory.
func (m *MemoryUsage) SetBuffered(v float64) *MemoryUsage {
	m.buffered.Set(v)
	return m
}

// SetCached sets cached memory.
func (m *MemoryUsage) SetCached(v float64) *MemoryUsage {
	m.cached.Set(v)
	return m
}

// SetConfigured sets configured memory.
func (m *MemoryUsage) SetConfigured(v float64) *MemoryUsage {
	m.configured.Set(v)
	return m
}

// SetSlabReclaimable sets reclaimable slab memory.
func (m *MemoryUsage) SetSlabReclaimable(v float64) *MemoryUsage {
	m.slabRecl.Set(v)
	return m
}

// SetSlabUnreclaimable sets unreclaimable slab memory.
func (m *MemoryUsage) SetSlabUnreclaimable(v float64) *MemoryUsage {
	m.slabUnrecl.Set(v)
	return m
}

// DiskUsage holds per-interval averages for one disk.
type DiskUsage struct {
	id string

	ioTimeAvg      Optional[float64]
	mergedReadAvg  Optional[float64]
	mergedWriteAvg Optional[float64]
	octetsReadAvg  Optional[float64]
	octetsWriteAvg Optional[float64]
	opsReadAvg     Optional[float64]
	opsWriteAvg    Optional[float64]
	timeReadAvg    Optional[float64]
	timeWriteAvg   Optional[float64]
}

// SetIOTimeAvg sets the average time spent doing IO.
func (d *DiskUsage) SetIOTimeAvg(v float64) *DiskUsage {
	d.ioTimeAvg.Set(v)
	return d
}

// SetMergedReadAvg sets the average merged reads.
func (d *DiskUsage) SetMergedReadAvg(v float64) *DiskUsage {
	d.mergedReadAvg.Set(v)
	return d
}

// SetMergedWriteAvg sets the average merged writes.
func (d *DiskUsage) SetMergedWriteAvg(v float64) *DiskUsage {
	d.mergedWriteAvg.Set(v)
	return d
}

// SetOctetsReadAvg sets the average octets read.
func (d *DiskUsage) SetOctetsReadAvg(v float64) *DiskUsage {
	d.octetsReadAvg.Set(v)
	return d
}

// SetOctetsWriteAvg sets the average octets written.
func (d *DiskUsage) SetOctetsWriteAvg(v float64) *DiskUsage {
	d.octetsWriteAvg.Set(v)
	return d
}

// SetOpsReadAvg sets the average read operations.
func (d *DiskUsage) SetOpsReadAvg(v float64) *DiskUsage {
	d.opsReadAvg.Set(v)
	return d
}

// SetOpsWriteAvg sets the average write operations.
func (d *DiskUsage) SetOpsWriteAvg(v float64) *DiskUsage {
	d.opsWriteAvg.Set(v)
	return d
}

// SetTimeReadAvg sets the average read time.
func (d *DiskUsage) SetTimeReadAvg(v float64) *DiskUsage {
	d.timeReadAvg.Set(v)
	return d
}

// SetTimeWriteAvg sets the average write time.
func (d *DiskUsage) SetTimeWriteAvg(v float64) *DiskUsage {
	d.timeWriteAvg.Set(v)
	return d
}

// VNICPerformance holds counters for one virtual NIC.
type VNICPerformance struct {
	id               string
	valuesAreSuspect bool

	receivedOctetsAccumulated          Optional[float64]
	receivedOctetsDelta                Optional[float64]
	receivedTotalPacketsAccumulated    Optional[float64]
	receivedTotalPacketsDelta          Optional[float64]
	receivedDiscardedPacketsDelta      Optional[float64]
	receivedErrorPacketsDelta          Optional[float64]
	transmittedOctetsAccumulated       Optional[float64]
	transmittedOctetsDelta             Optional[float64]
	transmittedTotalPacketsAccumulated Optional[float64]
	transmittedTotalPacketsDelta       Optional[float64]
	transmittedDiscardedPacketsDelta   Optional[float64]
	transmittedErrorPacketsDelta       Optional[float64]
}

// SetReceivedOctets sets accumulated and delta received octets.
func (v *VNICPerformance) SetReceivedOctets(accumulated, delta float64) *VNICPerformance {
	v.receivedOctetsAccumulated.Set(accumulated)
	v.receivedOctetsDelta.Set(delta)
	return v
}

// SetReceivedPackets sets accumulated and delta received packets.
func (v *VNICPerformance) SetReceivedPackets(accumulated, delta float64) *VNICPerformance {
	v.receivedTotalPacketsAccumulated.Set(accumulated)
	v.receivedTotalPacketsDelta.Set(delta)
	return v
}

// SetReceivedDiscarded sets the received discarded packets delta.
func (v *VNICPerformance) SetReceivedDiscarded(delta float64) *VNICPerformance {
	v.receivedDiscardedPacketsDelta.Set(delta)
	return v
}

// SetReceivedErrors sets the received error packets delta.
func (v *VNICPerformance) SetReceivedErrors(delta float64) *VNICPerformance {
	v.receivedErrorPacketsDelta.Set(delta)
	return v
}

// SetTransmittedOctets sets accumulated and delta transmitted octets.
func (v *VNICPerformance) SetTransmittedOctets(accumulated, delta float64) *VNICPerformance {
	v.transmittedOctetsAccumulated.Set(accumulated)
	v.transmittedOctetsDelta.Set(delta)
	return v
}

// SetTransmittedPackets sets accumulated and delta transmitted packets.
func (v *VNICPerformance) SetTransmittedPackets(accumulated, delta float64) *VNICPerformance {
	v.transmittedTotalPacketsAccumulated.Set(accumulated)
	v.transmittedTotalPacketsDelta.Set(delta)
	return v
}

// SetTransmittedDiscarded sets the transmitted discarded packets delta.
func (v *VNICPerformance) SetTransmittedDiscarded(delta float64) *VNICPerformance {
	v.transmittedDiscardedPacketsDelta.Set(delta)
	return v
}

// SetTransmittedErrors sets the transmitted error packets delta.
func (v *VNICPerformance) SetTransmittedErrors(delta float64) *VNICPerformance {
	v.transmittedErrorPacketsDelta.Set(delta)
	return v
}

// LatencyBucket counts requests whose latency fell in one range (milliseconds).
type LatencyBucket struct {
	counts  int
	lowEnd  Optional[float64]
	highEnd Optional[float64]
}

// SetRange sets the bucket bounds.
func (b *LatencyBucket) SetRange(low, high float64) *LatencyBucket {
	b.lowEnd.Set(low)
	b.highEnd.Set(high)
	return b
}

// CodecUse is the number of sessions using one codec.
type CodecUse struct {
	Codec string
	InUse int
}

// FeatureUse is the utilization of one feature.
type FeatureUse struct {
	Feature     string
	Utilization int
}

// MeasurementGroup is a named list of additional measurements.
type MeasurementGroup struct {
	name   string
	fields KeyValueList
}

// Add appends one measurement to the group.
func (g *MeasurementGroup) Add(name, value string) *MeasurementGroup {
	g.fields.Add(name, value)
	return g
}
