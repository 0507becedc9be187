package hostmetrics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	netio "github.com/shirou/gopsutil/v4/net"

	"vesagent/event"
	"vesagent/wire"
)

type fakeHost struct {
	at   time.Time
	cpu  []cpu.TimesStat
	vm   *mem.VirtualMemoryStat
	nics []netio.IOCountersStat
	disk map[string]disk.IOCountersStat
	err  error
}

func newTestSampler(t *testing.T, cfg Config, host *fakeHost) *Sampler {
	t.Helper()

	sampler, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	sampler.readCPU = func(context.Context, bool) ([]cpu.TimesStat, error) {
		return host.cpu, host.err
	}
	sampler.readMem = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return host.vm, nil
	}
	sampler.readNICs = func(context.Context, bool) ([]netio.IOCountersStat, error) {
		return append([]netio.IOCountersStat(nil), host.nics...), nil
	}
	sampler.readDisk = func(context.Context, ...string) (map[string]disk.IOCountersStat, error) {
		return host.disk, nil
	}
	sampler.now = func() time.Time { return host.at }
	return sampler
}

// fillDoc runs one Fill and returns the serialized measurement fields.
// Params: t test handle; sampler under test.
// Returns: measurementsForVfScalingFields object.
func fillDoc(t *testing.T, sampler *Sampler) *wire.Object {
	t.Helper()

	m := event.NewMeasurement("Measurement_host", "m-1", 10)
	m.FillDefaults("vnf-01", "vnf-01")
	if err := sampler.Fill(context.Background(), m); err != nil {
		t.Fatalf("Fill() error: %v", err)
	}
	out, err := event.Serialize(m)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	doc, err := out.Document()
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	fields := doc.Object("measurementsForVfScalingFields")
	if fields == nil {
		t.Fatalf("missing measurementsForVfScalingFields")
	}
	return fields
}

func records(t *testing.T, fields *wire.Object, name string) []*wire.Object {
	t.Helper()

	raw, ok := fields.Get(name)
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		t.Fatalf("%s is %T, want array", name, raw)
	}
	out := make([]*wire.Object, 0, len(items))
	for _, item := range items {
		obj, ok := item.(*wire.Object)
		if !ok {
			t.Fatalf("%s item is %T, want object", name, item)
		}
		out = append(out, obj)
	}
	return out
}

func number(t *testing.T, obj *wire.Object, name string) float64 {
	t.Helper()

	raw, ok := obj.Get(name)
	if !ok {
		t.Fatalf("missing %s in %v", name, obj.Names())
	}
	num, ok := raw.(json.Number)
	if !ok {
		t.Fatalf("%s is %T, want number", name, raw)
	}
	value, err := num.Float64()
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return value
}

func text(t *testing.T, obj *wire.Object, name string) string {
	t.Helper()

	raw, _ := obj.Get(name)
	value, ok := raw.(string)
	if !ok {
		t.Fatalf("%s is %T, want string", name, raw)
	}
	return value
}

func TestSamplerFillFirstAndSecondSample(t *testing.T) {
	host := &fakeHost{
		at:  time.Unix(1700000000, 0),
		cpu: []cpu.TimesStat{{CPU: "cpu0", User: 30, System: 10, Idle: 50, Iowait: 10}},
		vm: &mem.VirtualMemoryStat{
			Total: 8192, Free: 2048, Used: 4096, Buffers: 1024, Cached: 1024,
		},
		nics: []netio.IOCountersStat{
			{Name: "lo", BytesRecv: 10, BytesSent: 10},
			{Name: "eth0", BytesRecv: 1000, BytesSent: 400, PacketsRecv: 10, PacketsSent: 4},
		},
		disk: map[string]disk.IOCountersStat{
			"sda":  {ReadCount: 100, ReadTime: 50, ReadBytes: 4096},
			"sda1": {ReadCount: 100},
		},
	}
	sampler := newTestSampler(t, Config{VMID: "vm-1"}, host)

	first := fillDoc(t, sampler)

	cpus := records(t, first, "cpuUsageArray")
	if len(cpus) != 1 {
		t.Fatalf("cpuUsageArray len=%d want 1", len(cpus))
	}
	if got := number(t, cpus[0], "percentUsage"); got != 40 {
		t.Fatalf("percentUsage=%v want 40", got)
	}
	if got := number(t, cpus[0], "cpuIdle"); got != 50 {
		t.Fatalf("cpuIdle=%v want 50", got)
	}

	memory := records(t, first, "memoryUsageArray")
	if len(memory) != 1 || text(t, memory[0], "vmIdentifier") != "vm-1" {
		t.Fatalf("unexpected memoryUsageArray: %v", memory)
	}
	if got := number(t, memory[0], "memoryFree"); got != 2 {
		t.Fatalf("memoryFree=%v want 2 KiB", got)
	}
	if got := number(t, memory[0], "memoryConfigured"); got != 8 {
		t.Fatalf("memoryConfigured=%v want 8 KiB", got)
	}

	vnics := records(t, first, "vNicPerformanceArray")
	if len(vnics) != 1 || text(t, vnics[0], "vNicIdentifier") != "eth0" {
		t.Fatalf("expected only eth0 without masks, got %d records", len(vnics))
	}
	if text(t, vnics[0], "valuesAreSuspect") != "true" {
		t.Fatalf("first sample must be suspect")
	}
	if got := number(t, vnics[0], "receivedOctetsDelta"); got != 0 {
		t.Fatalf("first receivedOctetsDelta=%v want 0", got)
	}

	if disks := records(t, first, "diskUsageArray"); len(disks) != 0 {
		t.Fatalf("first sample has no disk interval, got %d records", len(disks))
	}

	host.at = host.at.Add(10 * time.Second)
	host.cpu = []cpu.TimesStat{{CPU: "cpu0", User: 40, System: 20, Idle: 80, Iowait: 10}}
	host.nics = []netio.IOCountersStat{
		{Name: "eth0", BytesRecv: 1500, BytesSent: 600, PacketsRecv: 15, PacketsSent: 6, Dropin: 2},
	}
	host.disk = map[string]disk.IOCountersStat{
		"sda":  {ReadCount: 200, ReadTime: 250, ReadBytes: 4096 + 40960},
		"sda1": {ReadCount: 300},
	}

	second := fillDoc(t, sampler)

	cpus = records(t, second, "cpuUsageArray")
	if got := number(t, cpus[0], "percentUsage"); got != 40 {
		t.Fatalf("interval percentUsage=%v want 40", got)
	}
	if got := number(t, cpus[0], "cpuIdle"); got != 60 {
		t.Fatalf("interval cpuIdle=%v want 60", got)
	}

	vnics = records(t, second, "vNicPerformanceArray")
	if text(t, vnics[0], "valuesAreSuspect") != "false" {
		t.Fatalf("second sample must not be suspect")
	}
	if got := number(t, vnics[0], "receivedOctetsDelta"); got != 500 {
		t.Fatalf("receivedOctetsDelta=%v want 500", got)
	}
	if got := number(t, vnics[0], "receivedOctetsAccumulated"); got != 1500 {
		t.Fatalf("receivedOctetsAccumulated=%v want 1500", got)
	}
	if got := number(t, vnics[0], "receivedDiscardedPacketsDelta"); got != 2 {
		t.Fatalf("receivedDiscardedPacketsDelta=%v want 2", got)
	}

	disks := records(t, second, "diskUsageArray")
	if len(disks) != 1 || text(t, disks[0], "diskIdentifier") != "sda" {
		t.Fatalf("expected only base disk sda, got %d records", len(disks))
	}
	if got := number(t, disks[0], "diskOpsReadAvg"); got != 10 {
		t.Fatalf("diskOpsReadAvg=%v want 10", got)
	}
	if got := number(t, disks[0], "diskTimeReadAvg"); got != 2 {
		t.Fatalf("diskTimeReadAvg=%v want 2", got)
	}
	if got := number(t, disks[0], "diskOctetsReadAvg"); got != 4096 {
		t.Fatalf("diskOctetsReadAvg=%v want 4096", got)
	}
}

func TestSamplerCounterResetIsSuspect(t *testing.T) {
	host := &fakeHost{
		at:   time.Unix(1700000000, 0),
		vm:   &mem.VirtualMemoryStat{},
		nics: []netio.IOCountersStat{{Name: "eth0", BytesRecv: 5000, BytesSent: 5000}},
	}
	sampler := newTestSampler(t, Config{}, host)
	fillDoc(t, sampler)

	host.at = host.at.Add(time.Second)
	host.nics = []netio.IOCountersStat{{Name: "eth0", BytesRecv: 100, BytesSent: 6000}}

	vnics := records(t, fillDoc(t, sampler), "vNicPerformanceArray")
	if text(t, vnics[0], "valuesAreSuspect") != "true" {
		t.Fatalf("counter reset must be suspect")
	}
	if got := number(t, vnics[0], "receivedOctetsDelta"); got != 0 {
		t.Fatalf("receivedOctetsDelta after reset=%v want 0", got)
	}
	if got := number(t, vnics[0], "transmittedOctetsDelta"); got != 1000 {
		t.Fatalf("transmittedOctetsDelta=%v want 1000", got)
	}
}

func TestSamplerMasks(t *testing.T) {
	host := &fakeHost{
		at: time.Unix(1700000000, 0),
		vm: &mem.VirtualMemoryStat{},
		nics: []netio.IOCountersStat{
			{Name: "ens3"}, {Name: "eth1"}, {Name: "eth0"}, {Name: "lo"},
		},
		disk: map[string]disk.IOCountersStat{"sda": {}, "nvme0n1": {}, "nvme0n1p1": {}},
	}
	sampler := newTestSampler(t, Config{VNICs: []string{"eth*", "lo"}, Disks: []string{"nvme*"}}, host)
	fillDoc(t, sampler)
	host.at = host.at.Add(time.Second)

	fields := fillDoc(t, sampler)

	var names []string
	for _, vnic := range records(t, fields, "vNicPerformanceArray") {
		names = append(names, text(t, vnic, "vNicIdentifier"))
	}
	if got := strings.Join(names, ","); got != "eth0,eth1,lo" {
		t.Fatalf("selected vnics=%q want eth0,eth1,lo", got)
	}

	disks := records(t, fields, "diskUsageArray")
	if len(disks) != 1 || text(t, disks[0], "diskIdentifier") != "nvme0n1" {
		t.Fatalf("expected only nvme0n1, got %d records", len(disks))
	}
}

func TestSamplerExtendedGroups(t *testing.T) {
	host := &fakeHost{at: time.Unix(1700000000, 0), vm: &mem.VirtualMemoryStat{}}
	sampler := newTestSampler(t, Config{Mounts: []string{"/", "/data*"}, Extended: true}, host)
	sampler.readPartitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw"}},
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw"}},
			{Device: "/dev/sdb1", Mountpoint: "/data", Fstype: "xfs", Opts: []string{"ro", "noatime"}},
			{Device: "/dev/sdc1", Mountpoint: "/boot", Fstype: "ext4"},
			{Device: "/dev/sdd1", Mountpoint: "/data2", Fstype: "xfs"},
		}, nil
	}
	sampler.readUsage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		if path == "/data2" {
			return nil, errors.New("stale mount")
		}
		return &disk.UsageStat{Total: 1000, Used: 250, Free: 750, UsedPercent: 25}, nil
	}
	sampler.readSwap = func(context.Context) (*mem.SwapMemoryStat, error) {
		return &mem.SwapMemoryStat{Total: 4096, Used: 1024}, nil
	}
	sampler.readLoad = func(context.Context) (*load.AvgStat, error) {
		return &load.AvgStat{Load1: 0.5, Load5: 0.25, Load15: 0.125}, nil
	}
	sampler.readMisc = func(context.Context) (*load.MiscStat, error) {
		return nil, errors.New("no /proc/stat")
	}

	fields := fillDoc(t, sampler)

	groups := records(t, fields, "additionalMeasurements")
	var names []string
	values := map[string]map[string]string{}
	for _, group := range groups {
		name := text(t, group, "name")
		names = append(names, name)
		values[name] = map[string]string{}
		raw, _ := group.Get("arrayOfFields")
		items, _ := raw.([]any)
		for _, item := range items {
			field := item.(*wire.Object)
			values[name][text(t, field, "name")] = text(t, field, "value")
		}
	}

	if got := strings.Join(names, ","); got != "filesystem:/,filesystem:/data,swap,load" {
		t.Fatalf("groups=%q", got)
	}
	if got := values["filesystem:/data"]["readOnly"]; got != "true" {
		t.Fatalf("readOnly=%q want true", got)
	}
	if got := values["filesystem:/"]["usedPercent"]; got != "25" {
		t.Fatalf("usedPercent=%q want 25", got)
	}
	if got := values["swap"]["usedPercent"]; got != "25" {
		t.Fatalf("swap usedPercent=%q want 25", got)
	}
	if got := values["load"]["load15"]; got != "0.125" {
		t.Fatalf("load15=%q want 0.125", got)
	}
	if _, ok := values["load"]["procsRunning"]; ok {
		t.Fatalf("process counts must be skipped when unavailable")
	}
}

func TestSamplerFillReadError(t *testing.T) {
	readErr := errors.New("proc unavailable")
	sampler := newTestSampler(t, Config{}, &fakeHost{err: readErr})

	err := sampler.Fill(context.Background(), event.NewMeasurement("m", "m-1", 10))
	if !errors.Is(err, readErr) {
		t.Fatalf("Fill() error=%v want wrapped %v", err, readErr)
	}
	if !strings.Contains(err.Error(), "read cpu times") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestNewRejectsEmptyMask(t *testing.T) {
	if _, err := New(Config{Disks: []string{"sd*", " "}}); err == nil || !strings.Contains(err.Error(), "disks[1]") {
		t.Fatalf("expected disks[1] error, got %v", err)
	}
}

func TestIsBaseDiskDevice(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{name: "sda", want: true},
		{name: "sda3", want: false},
		{name: "/dev/sda", want: true},
		{name: "/dev/vdb2", want: false},
		{name: "xvda", want: true},
		{name: "xvda1", want: false},
		{name: "nvme0n1", want: true},
		{name: "nvme0n1p1", want: false},
		{name: "mmcblk0", want: true},
		{name: "mmcblk0p2", want: false},
		{name: "loop0", want: false},
		{name: "ram1", want: false},
		{name: "dm-0", want: true},
		{name: "md127", want: true},
		{name: "weird_device", want: true},
		{name: "", want: false},
		{name: "   ", want: false},
	}

	for _, tc := range cases {
		if got := isBaseDiskDevice(tc.name); got != tc.want {
			t.Fatalf("isBaseDiskDevice(%q)=%v want %v", tc.name, got, tc.want)
		}
	}
}
