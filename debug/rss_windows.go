//go:build windows

package debug

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// memCounters matches PROCESS_MEMORY_COUNTERS from psapi.
type memCounters struct {
	cb                         uint32
	PageFaultCount             uint32
	PeakWorkingSetSize         uintptr
	WorkingSetSize             uintptr
	QuotaPeakPagedPoolUsage    uintptr
	QuotaPagedPoolUsage        uintptr
	QuotaPeakNonPagedPoolUsage uintptr
	QuotaNonPagedPoolUsage     uintptr
	PagefileUsage              uintptr
	PeakPagefileUsage          uintptr
}

var procGetProcessMemoryInfo = windows.NewLazySystemDLL("psapi.dll").NewProc("GetProcessMemoryInfo")

// processRSS returns the working set of the current process. Native memory
// held by the capture backend shows up here but not in the Go heap.
func processRSS() (uint64, error) {
	mc := memCounters{cb: uint32(unsafe.Sizeof(memCounters{}))}
	ok, _, err := procGetProcessMemoryInfo.Call(uintptr(windows.CurrentProcess()), uintptr(unsafe.Pointer(&mc)), uintptr(mc.cb))
	if ok == 0 {
		return 0, err
	}
	return uint64(mc.WorkingSetSize), nil
}
