package hostmetrics

import (
	"context"
	"math"
	"strconv"
	"strings"

	"vesagent/event"
)

const (
	filesystemGroupPrefix = "filesystem:"
	swapGroup             = "swap"
	loadGroup             = "load"
)

// addFilesystems appends one additionalMeasurements group per selected mount point.
// Mounts whose usage cannot be read are skipped.
// Params: ctx for cancellation; m target measurement.
// Returns: none.
func (s *Sampler) addFilesystems(ctx context.Context, m *event.Measurement) {
	partitions, err := s.readPartitions(ctx, false)
	if err != nil {
		return
	}

	seen := make(map[string]struct{}, len(partitions))
	for _, part := range partitions {
		mountpoint := strings.TrimSpace(part.Mountpoint)
		if mountpoint == "" || !selected(s.mounts, mountpoint, true) {
			continue
		}
		if _, dup := seen[mountpoint]; dup {
			continue
		}
		seen[mountpoint] = struct{}{}

		usage, err := s.readUsage(ctx, mountpoint)
		if err != nil || usage == nil {
			continue
		}

		m.AddGroup(filesystemGroupPrefix+mountpoint).
			Add("device", part.Device).
			Add("fstype", part.Fstype).
			Add("totalBytes", formatUint(usage.Total)).
			Add("usedBytes", formatUint(usage.Used)).
			Add("freeBytes", formatUint(usage.Free)).
			Add("usedPercent", formatFloat(usage.UsedPercent)).
			Add("inodesUsedPercent", formatFloat(usage.InodesUsedPercent)).
			Add("readOnly", strconv.FormatBool(readOnly(part.Opts)))
	}
}

// addSwap appends the swap group; skipped when swap stats are unavailable.
// Params: ctx for cancellation; m target measurement.
// Returns: none.
func (s *Sampler) addSwap(ctx context.Context, m *event.Measurement) {
	swap, err := s.readSwap(ctx)
	if err != nil || swap == nil {
		return
	}
	used := 0.0
	if swap.Total > 0 {
		used = float64(swap.Used) * 100 / float64(swap.Total)
	}
	m.AddGroup(swapGroup).
		Add("totalKiB", formatFloat(float64(swap.Total)/kib)).
		Add("usedKiB", formatFloat(float64(swap.Used)/kib)).
		Add("usedPercent", formatFloat(used))
}

// addLoad appends load averages and process counts; skipped when unavailable.
// Params: ctx for cancellation; m target measurement.
// Returns: none.
func (s *Sampler) addLoad(ctx context.Context, m *event.Measurement) {
	avg, err := s.readLoad(ctx)
	if err != nil || avg == nil {
		return
	}
	group := m.AddGroup(loadGroup).
		Add("load1", formatFloat(avg.Load1)).
		Add("load5", formatFloat(avg.Load5)).
		Add("load15", formatFloat(avg.Load15))

	if misc, err := s.readMisc(ctx); err == nil && misc != nil {
		group.
			Add("procsRunning", strconv.Itoa(misc.ProcsRunning)).
			Add("procsBlocked", strconv.Itoa(misc.ProcsBlocked)).
			Add("procsTotal", strconv.Itoa(misc.ProcsTotal))
	}
}

func readOnly(opts []string) bool {
	for _, option := range opts {
		if strings.EqualFold(strings.TrimSpace(option), "ro") {
			return true
		}
	}
	return false
}

func formatFloat(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatUint(value uint64) string {
	return strconv.FormatUint(value, 10)
}
