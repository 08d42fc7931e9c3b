package goid

import "runtime"

// Get returns the numeric ID of the calling goroutine.
// The stack trace of the current goroutine always starts with "goroutine NNN [".
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
