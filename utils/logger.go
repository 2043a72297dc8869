package utils

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// can be replaced with SetLogger so tests or drivers can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
