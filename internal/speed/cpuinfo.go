package speed

import (
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// cpuModelName returns the CPU brand string as reported by CPUID, or, where
// there is none (arm), the "Hardware" line of /proc/cpuinfo. Returns "" on
// error.
//
// Examples: On a desktop PC:
//
//	Intel(R) Core(TM) i5-3470 CPU @ 3.20GHz
//
// On a Raspberry Pi 4:
//
//	$ grep Hardware /proc/cpuinfo
//	Hardware	: BCM2835
//
// --> Returns "BCM2835"
func cpuModelName() string {
	if name := strings.TrimSpace(cpuid.CPU.BrandName); name != "" {
		return name
	}
	if runtime.GOOS != "linux" {
		return ""
	}
	content, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	return parseCPUInfo(string(content))
}

// parseCPUInfo looks for "model name", then for "Hardware" (arm devices
// don't have "model name").
func parseCPUInfo(content string) string {
	lines := strings.Split(content, "\n")
	for _, want := range []string{"model name", "Hardware"} {
		for _, line := range lines {
			if strings.HasPrefix(line, want) {
				parts := strings.SplitN(line, ":", 2)
				if len(parts) != 2 {
					continue
				}
				return strings.TrimSpace(parts[1])
			}
		}
	}
	return ""
}

// CPUInfo describes the machine for "-info".
type CPUInfo struct {
	Model        string
	Vendor       string
	LogicalCores int
	// AESNI as seen by github.com/klauspost/cpuid
	AESNI bool
	// HardwareBackend is true if the symauth AES-NI backend is usable
	HardwareBackend bool
}

// GetCPUInfo collects CPUInfo.
func GetCPUInfo(hardwareBackend bool) CPUInfo {
	return CPUInfo{
		Model:           cpuModelName(),
		Vendor:          cpuid.CPU.VendorString,
		LogicalCores:    cpuid.CPU.LogicalCores,
		AESNI:           cpuid.CPU.Supports(cpuid.AESNI),
		HardwareBackend: hardwareBackend,
	}
}
