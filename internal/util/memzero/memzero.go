// Package memzero wipes secret buffers such as decoded PKCS#8 key bytes and
// derived sealing keys once they are no longer needed.
package memzero

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites b with zeros in a constant-time friendly way.
//
// This is best-effort: copies made elsewhere (for example inside the x509
// parser) are not reached.
//
//go:noinline
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	runtime.KeepAlive(&b)
}
