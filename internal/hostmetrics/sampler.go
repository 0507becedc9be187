// Package hostmetrics samples host CPU, memory, vNIC and disk counters into
// measurement events.
package hostmetrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	netio "github.com/shirou/gopsutil/v4/net"

	"vesagent/event"
	"vesagent/internal/match"
)

const kib = 1024.0

// Config selects the sampled resources.
// Params: VMID names the memoryUsage record; VNICs/Disks/Mounts are '*' wildcard masks (empty selects all,
// loopback excluded); Extended adds filesystem, swap and load groups.
// Returns: sampler settings.
type Config struct {
	VMID     string
	VNICs    []string
	Disks    []string
	Mounts   []string
	Extended bool
}

type snapshot struct {
	at   time.Time
	cpu  map[string]cpu.TimesStat
	nics map[string]netio.IOCountersStat
	disk map[string]disk.IOCountersStat
}

// Sampler fills measurement events from host counters.
// Deltas are computed against the previous Fill call.
type Sampler struct {
	vmID     string
	vnics    []match.WildcardPattern
	disks    []match.WildcardPattern
	mounts   []match.WildcardPattern
	extended bool

	readCPU        func(context.Context, bool) ([]cpu.TimesStat, error)
	readMem        func(context.Context) (*mem.VirtualMemoryStat, error)
	readNICs       func(context.Context, bool) ([]netio.IOCountersStat, error)
	readDisk       func(context.Context, ...string) (map[string]disk.IOCountersStat, error)
	readPartitions func(context.Context, bool) ([]disk.PartitionStat, error)
	readUsage      func(context.Context, string) (*disk.UsageStat, error)
	readSwap       func(context.Context) (*mem.SwapMemoryStat, error)
	readLoad       func(context.Context) (*load.AvgStat, error)
	readMisc       func(context.Context) (*load.MiscStat, error)
	now            func() time.Time

	mu   sync.Mutex
	prev snapshot
}

// New creates a host sampler.
// Params: cfg resource selection.
// Returns: sampler or error on an empty mask.
func New(cfg Config) (*Sampler, error) {
	vnics, err := compileMasks("vnics", cfg.VNICs)
	if err != nil {
		return nil, err
	}
	disks, err := compileMasks("disks", cfg.Disks)
	if err != nil {
		return nil, err
	}
	mounts, err := compileMasks("mounts", cfg.Mounts)
	if err != nil {
		return nil, err
	}
	vmID := strings.TrimSpace(cfg.VMID)
	if vmID == "" {
		vmID = "host"
	}

	return &Sampler{
		vmID:           vmID,
		vnics:          vnics,
		disks:          disks,
		mounts:         mounts,
		extended:       cfg.Extended,
		readCPU:        cpu.TimesWithContext,
		readMem:        mem.VirtualMemoryWithContext,
		readNICs:       netio.IOCountersWithContext,
		readDisk:       disk.IOCountersWithContext,
		readPartitions: disk.PartitionsWithContext,
		readUsage:      disk.UsageWithContext,
		readSwap:       mem.SwapMemoryWithContext,
		readLoad:       load.AvgWithContext,
		readMisc:       load.MiscWithContext,
		now:            time.Now,
	}, nil
}

// Fill appends cpuUsage, memoryUsage, vNicPerformance and diskUsage records to m,
// plus best-effort filesystem, swap and load groups when extended sampling is on.
// Params: ctx for cancellation; m measurement being built by the caller.
// Returns: first core read error; m is left untouched in that case.
func (s *Sampler) Fill(ctx context.Context, m *event.Measurement) error {
	cpuStats, err := s.readCPU(ctx, true)
	if err != nil {
		return fmt.Errorf("read cpu times: %w", err)
	}
	vm, err := s.readMem(ctx)
	if err != nil {
		return fmt.Errorf("read virtual memory: %w", err)
	}
	nicStats, err := s.readNICs(ctx, true)
	if err != nil {
		return fmt.Errorf("read net counters: %w", err)
	}
	diskStats, err := s.readDisk(ctx)
	if err != nil {
		return fmt.Errorf("read disk counters: %w", err)
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	seconds := 0.0
	if !s.prev.at.IsZero() {
		seconds = now.Sub(s.prev.at).Seconds()
	}

	next := snapshot{
		at:   now,
		cpu:  make(map[string]cpu.TimesStat, len(cpuStats)),
		nics: make(map[string]netio.IOCountersStat, len(nicStats)),
		disk: make(map[string]disk.IOCountersStat, len(diskStats)),
	}

	for _, stat := range cpuStats {
		next.cpu[stat.CPU] = stat
		addCPU(m, stat, s.prev.cpu)
	}

	addMemory(m, s.vmID, vm)

	sort.Slice(nicStats, func(i, j int) bool { return nicStats[i].Name < nicStats[j].Name })
	for _, stat := range nicStats {
		if !selected(s.vnics, stat.Name, stat.Name != "lo") {
			continue
		}
		next.nics[stat.Name] = stat
		addVNIC(m, stat, s.prev.nics)
	}

	names := make([]string, 0, len(diskStats))
	for name := range diskStats {
		if isBaseDiskDevice(name) && selected(s.disks, normalizeDeviceName(name), true) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		stat := diskStats[name]
		next.disk[name] = stat
		if prev, ok := s.prev.disk[name]; ok && seconds > 0 {
			addDisk(m, normalizeDeviceName(name), stat, prev, seconds)
		}
	}

	s.prev = next

	if s.extended {
		s.addFilesystems(ctx, m)
		s.addSwap(ctx, m)
		s.addLoad(ctx, m)
	}
	return nil
}

// addCPU appends one cpuUsage record with shares of the interval (or since boot on the first sample).
// Params: m target measurement; stat current times; prev previous times by cpu id.
// Returns: none.
func addCPU(m *event.Measurement, stat cpu.TimesStat, prev map[string]cpu.TimesStat) {
	delta := stat
	if before, ok := prev[stat.CPU]; ok {
		delta = cpu.TimesStat{
			CPU:     stat.CPU,
			User:    nonNegative(stat.User - before.User),
			System:  nonNegative(stat.System - before.System),
			Idle:    nonNegative(stat.Idle - before.Idle),
			Nice:    nonNegative(stat.Nice - before.Nice),
			Iowait:  nonNegative(stat.Iowait - before.Iowait),
			Irq:     nonNegative(stat.Irq - before.Irq),
			Softirq: nonNegative(stat.Softirq - before.Softirq),
			Steal:   nonNegative(stat.Steal - before.Steal),
		}
	}

	total := delta.User + delta.System + delta.Idle + delta.Nice + delta.Iowait + delta.Irq + delta.Softirq + delta.Steal
	share := func(value float64) float64 {
		if total <= 0 {
			return 0
		}
		return value * 100 / total
	}

	m.AddCPUUsage(stat.CPU, share(total-delta.Idle-delta.Iowait)).
		SetIdle(share(delta.Idle)).
		SetInterrupt(share(delta.Irq)).
		SetNice(share(delta.Nice)).
		SetSoftIrq(share(delta.Softirq)).
		SetSteal(share(delta.Steal)).
		SetSystem(share(delta.System)).
		SetUser(share(delta.User)).
		SetWait(share(delta.Iowait))
}

// addMemory appends one memoryUsage record in KiB.
// Params: m target measurement; vmID record identifier; vm kernel memory stats.
// Returns: none.
func addMemory(m *event.Measurement, vmID string, vm *mem.VirtualMemoryStat) {
	if vm == nil {
		return
	}
	m.AddMemoryUsage(vmID, float64(vm.Free)/kib, float64(vm.Used)/kib).
		SetBuffered(float64(vm.Buffers) / kib).
		SetCached(float64(vm.Cached) / kib).
		SetConfigured(float64(vm.Total) / kib).
		SetSlabReclaimable(float64(vm.Sreclaimable) / kib).
		SetSlabUnreclaimable(float64(vm.Sunreclaim) / kib)
}

// addVNIC appends one vNicPerformance record.
// Values are suspect on the first sample and after a counter reset.
// Params: m target measurement; stat current counters; prev previous counters by interface name.
// Returns: none.
func addVNIC(m *event.Measurement, stat netio.IOCountersStat, prev map[string]netio.IOCountersStat) {
	before, hasPrev := prev[stat.Name]
	suspect := !hasPrev || counterReset(stat, before)
	if !hasPrev {
		before = stat
	}

	m.AddVNICPerformance(stat.Name, suspect).
		SetReceivedOctets(float64(stat.BytesRecv), float64(positiveDelta(stat.BytesRecv, before.BytesRecv))).
		SetReceivedPackets(float64(stat.PacketsRecv), float64(positiveDelta(stat.PacketsRecv, before.PacketsRecv))).
		SetReceivedDiscarded(float64(positiveDelta(stat.Dropin, before.Dropin))).
		SetReceivedErrors(float64(positiveDelta(stat.Errin, before.Errin))).
		SetTransmittedOctets(float64(stat.BytesSent), float64(positiveDelta(stat.BytesSent, before.BytesSent))).
		SetTransmittedPackets(float64(stat.PacketsSent), float64(positiveDelta(stat.PacketsSent, before.PacketsSent))).
		SetTransmittedDiscarded(float64(positiveDelta(stat.Dropout, before.Dropout))).
		SetTransmittedErrors(float64(positiveDelta(stat.Errout, before.Errout)))
}

// addDisk appends one diskUsage record with per-second and per-operation averages.
// Params: m target measurement; id device name; stat/prev counters; seconds elapsed.
// Returns: none.
func addDisk(m *event.Measurement, id string, stat, prev disk.IOCountersStat, seconds float64) {
	reads := positiveDelta(stat.ReadCount, prev.ReadCount)
	writes := positiveDelta(stat.WriteCount, prev.WriteCount)

	m.AddDiskUsage(id).
		SetIOTimeAvg(float64(positiveDelta(stat.IoTime, prev.IoTime)) / seconds).
		SetMergedReadAvg(float64(positiveDelta(stat.MergedReadCount, prev.MergedReadCount)) / seconds).
		SetMergedWriteAvg(float64(positiveDelta(stat.MergedWriteCount, prev.MergedWriteCount)) / seconds).
		SetOctetsReadAvg(float64(positiveDelta(stat.ReadBytes, prev.ReadBytes)) / seconds).
		SetOctetsWriteAvg(float64(positiveDelta(stat.WriteBytes, prev.WriteBytes)) / seconds).
		SetOpsReadAvg(float64(reads) / seconds).
		SetOpsWriteAvg(float64(writes) / seconds).
		SetTimeReadAvg(averageOrZero(positiveDelta(stat.ReadTime, prev.ReadTime), reads)).
		SetTimeWriteAvg(averageOrZero(positiveDelta(stat.WriteTime, prev.WriteTime), writes))
}

func counterReset(current, previous netio.IOCountersStat) bool {
	return current.BytesRecv < previous.BytesRecv ||
		current.BytesSent < previous.BytesSent ||
		current.PacketsRecv < previous.PacketsRecv ||
		current.PacketsSent < previous.PacketsSent
}

// compileMasks compiles wildcard masks.
// Params: name config key for errors; masks raw patterns.
// Returns: compiled patterns or error on an empty mask.
func compileMasks(name string, masks []string) ([]match.WildcardPattern, error) {
	out := make([]match.WildcardPattern, 0, len(masks))
	for idx, mask := range masks {
		compiled, ok := match.CompileWildcard(mask)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: empty mask", name, idx)
		}
		out = append(out, compiled)
	}
	return out, nil
}

// selected reports whether value passes the masks.
// Params: masks compiled patterns; value resource name; fallback result when no masks are configured.
// Returns: true when any mask matches.
func selected(masks []match.WildcardPattern, value string, fallback bool) bool {
	if len(masks) == 0 {
		return fallback
	}
	for _, mask := range masks {
		if mask.Match(value) {
			return true
		}
	}
	return false
}

// positiveDelta returns current-previous or zero on counter reset.
// Params: current and previous counter values.
// Returns: non-negative delta.
func positiveDelta(current, previous uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}

func nonNegative(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

// averageOrZero calculates numerator/denominator or zero.
// Params: numerator total; denominator count.
// Returns: average value or zero on empty denominator.
func averageOrZero(numerator, denominator uint64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
