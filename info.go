package main

import (
	"fmt"

	"golang.org/x/sys/cpu"

	"github.com/remotefs/symauth/internal/aesni"
	"github.com/remotefs/symauth/internal/speed"
	"github.com/remotefs/symauth/internal/symauth"
	"github.com/remotefs/symauth/internal/tlog"
)

// infoReport is what "-info" prints.
type infoReport struct {
	speed.CPUInfo
	// As seen by golang.org/x/sys/cpu
	SysCPUHasAES     bool
	SysCPUHasSSE41   bool
	RequestedBackend string
	Backend          string
}

func getInfo(backend symauth.BackendTypeEnum) infoReport {
	r := infoReport{
		CPUInfo:          speed.GetCPUInfo(aesni.HasHardwareSupport()),
		SysCPUHasAES:     cpu.X86.HasAES,
		SysCPUHasSSE41:   cpu.X86.HasSSE41,
		RequestedBackend: backend.String(),
	}
	switch {
	case backend == symauth.BackendHardware && !r.HardwareBackend:
		r.Backend = "unavailable"
	case backend == symauth.BackendSoftware || !r.HardwareBackend:
		r.Backend = symauth.BackendSoftware.String()
	default:
		r.Backend = symauth.BackendHardware.String()
	}
	return r
}

// info pretty-prints what we know about the CPU and which backend a session
// would use. This is called when you pass the "-info" option.
func info(args *argContainer) {
	r := getInfo(args._backend)
	if args.json {
		fmt.Println(tlog.JSONDump(r))
		return
	}
	model := r.Model
	if model == "" {
		model = "unknown"
	}
	fmt.Printf("CPU:               %s (%s, %d logical cores)\n", model, r.Vendor, r.LogicalCores)
	fmt.Printf("AES-NI:            cpuid=%v x/sys/cpu=%v\n", r.AESNI, r.SysCPUHasAES)
	fmt.Printf("Hardware backend:  %v\n", r.HardwareBackend)
	fmt.Printf("Backend:           %s (requested: %s)\n", r.Backend, r.RequestedBackend)
}
