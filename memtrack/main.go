// The memtrack command serves a realtime demand-paging simulation with a
// web dashboard.
package main

import "github.com/GPCSantosh/RealTime-Mem-Allocator/memtrack/cmd"

func main() {
	cmd.Execute()
}
