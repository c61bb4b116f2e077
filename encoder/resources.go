package encoder

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// checkFreeResources verifies the output directory's filesystem and system
// memory can take another encode. Probe errors are ignored; only a confirmed
// shortage blocks the job.
func checkFreeResources(dir string, minDisk, minMem uint64) error {
	if minDisk > 0 {
		if usage, err := disk.Usage(dir); err == nil && usage.Free < minDisk {
			return fmt.Errorf("not enough free disk space in %s: %d bytes free, %d required", dir, usage.Free, minDisk)
		}
	}
	if minMem > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available < minMem {
			return fmt.Errorf("not enough free memory: %d bytes available, %d required", vm.Available, minMem)
		}
	}
	return nil
}
