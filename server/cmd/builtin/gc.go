package builtin

import (
	"runtime"
	"runtime/debug"

	"github.com/dm-vev/gridkit/server/cmd"
)

func newGCCommand() cmd.Command {
	return cmd.New("gc").
		Description("Triggers a Go garbage collection cycle and returns memory to the OS.").
		Permission("gridkit.command.gc").
		Run(func(_ cmd.Source, _ []string, o *cmd.Output) {
			var before runtime.MemStats
			runtime.ReadMemStats(&before)

			debug.FreeOSMemory()

			var after runtime.MemStats
			runtime.ReadMemStats(&after)

			freedBytes := uint64(0)
			if before.HeapAlloc > after.HeapAlloc {
				freedBytes = before.HeapAlloc - after.HeapAlloc
			}

			o.Print("---- Garbage collection result ----")
			o.Printf("Heap memory freed: %.2f MiB (current heap %.2f MiB)", bytesToMiB(freedBytes), bytesToMiB(after.HeapAlloc))
			o.Printf("Released to OS: %.2f MiB", bytesToMiB(after.HeapReleased))
		}).
		MustBuild()
}
