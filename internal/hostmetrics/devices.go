package hostmetrics

import "strings"

// letterDiskFamilies are block device prefixes followed by letters and an optional partition number.
var letterDiskFamilies = []string{"sd", "vd", "xvd", "hd"}

// isBaseDiskDevice reports whether name is a whole disk rather than a partition or pseudo device.
// Params: raw device name, optionally /dev/ prefixed.
// Returns: true for whole disks and unknown names.
func isBaseDiskDevice(name string) bool {
	device := normalizeDeviceName(name)
	if device == "" {
		return false
	}

	for _, prefix := range letterDiskFamilies {
		if matched, base := letterDisk(device, prefix); matched {
			return base
		}
	}
	if matched, base := numberedDisk(device, "nvme", true); matched {
		return base
	}
	if matched, base := numberedDisk(device, "mmcblk", false); matched {
		return base
	}

	switch {
	case numbered(device, "loop"), numbered(device, "ram"):
		return false
	default:
		// dm-N, mdN, zdN and names from non-standard kernels are kept.
		return true
	}
}

// normalizeDeviceName trims spaces and an optional /dev/ prefix.
// Params: raw device name.
// Returns: short device name.
func normalizeDeviceName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/dev/")
}

// letterDisk matches sdX/vdX/xvdX/hdX with an optional numeric partition suffix.
// Params: device short name; prefix family.
// Returns: family matched flag and whole-disk decision.
func letterDisk(device, prefix string) (bool, bool) {
	rest, ok := strings.CutPrefix(device, prefix)
	if !ok || rest == "" {
		return false, false
	}

	letters := 0
	for letters < len(rest) && rest[letters] >= 'a' && rest[letters] <= 'z' {
		letters++
	}
	switch {
	case letters == 0:
		return false, false
	case letters == len(rest):
		return true, true
	default:
		return true, !isDigits(rest[letters:])
	}
}

// numberedDisk matches nvmeNnM[pP] (namespaced) and mmcblkN[pP] names.
// Params: device short name; prefix family; namespaced requires the nM part.
// Returns: family matched flag and whole-disk decision.
func numberedDisk(device, prefix string, namespaced bool) (bool, bool) {
	rest, ok := strings.CutPrefix(device, prefix)
	if !ok {
		return false, false
	}
	n := leadingDigits(rest)
	if n == 0 {
		return false, false
	}
	rest = rest[n:]

	if namespaced {
		if rest, ok = strings.CutPrefix(rest, "n"); !ok {
			return false, false
		}
		if n = leadingDigits(rest); n == 0 {
			return false, false
		}
		rest = rest[n:]
	}

	if partition, ok := strings.CutPrefix(rest, "p"); ok && isDigits(partition) {
		return true, false
	}
	return true, true
}

func numbered(device, prefix string) bool {
	rest, ok := strings.CutPrefix(device, prefix)
	return ok && isDigits(rest)
}

func leadingDigits(value string) int {
	index := 0
	for index < len(value) && value[index] >= '0' && value[index] <= '9' {
		index++
	}
	return index
}

func isDigits(value string) bool {
	return value != "" && leadingDigits(value) == len(value)
}
