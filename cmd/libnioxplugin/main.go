// Command libnioxplugin builds the C-callable discovery library:
//
//	go build -buildmode=c-shared -o libnioxplugin.so ./cmd/libnioxplugin
//
// The exported surface mirrors the plugin ABI: init, adapter state,
// blocking bounded scan returning a serialized device array, buffer
// release, cooperative stop, teardown, and a static info string.
//
// Ownership rules at this boundary: every non-NULL pointer returned by
// niox_scan must be passed to niox_release_buffer exactly once; the
// pointer returned by niox_static_info is static storage and must never
// be released. No panic propagates across an export.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/edwinatokaranAlten/NioxPlugin/internal/device"
	"github.com/edwinatokaranAlten/NioxPlugin/internal/gateway"
)

// liveBuffers maps C pointers handed to callers onto their gateway
// handles. Membership makes a double release detectable instead of a
// double free.
var liveBuffers = hashmap.New[uintptr, uint64]()

var (
	staticInfoOnce sync.Once
	staticInfoPtr  *C.char
)

//export niox_init
func niox_init() C.int {
	defer guard("niox_init")
	if gateway.Instance().Init() {
		return 1
	}
	return 0
}

//export niox_adapter_state
func niox_adapter_state() (state C.int) {
	// A recovered panic must not read as Enabled (0).
	defer func() {
		if r := recover(); r != nil {
			logPanic("niox_adapter_state", r)
			state = C.int(device.AdapterUnknown)
		}
	}()
	return C.int(gateway.Instance().AdapterState())
}

//export niox_scan
func niox_scan(durationMs C.int, targetOnly C.int) *C.char {
	defer guard("niox_scan")

	h, err := gateway.Instance().Scan(time.Duration(durationMs)*time.Millisecond, targetOnly != 0)
	if err != nil {
		return nil
	}
	buf, ok := gateway.Instance().BufferBytes(h)
	if !ok {
		return nil
	}

	cs := C.CString(string(buf))
	liveBuffers.Set(uintptr(unsafe.Pointer(cs)), h)
	return cs
}

//export niox_release_buffer
func niox_release_buffer(buf *C.char) {
	defer guard("niox_release_buffer")
	if buf == nil {
		return
	}
	key := uintptr(unsafe.Pointer(buf))
	h, ok := liveBuffers.Get(key)
	if !ok {
		// Unknown or already released pointer. Freeing it again would
		// corrupt the C heap, so the call is ignored.
		return
	}
	liveBuffers.Del(key)
	gateway.Instance().ReleaseBuffer(h)
	C.free(unsafe.Pointer(buf))
}

//export niox_stop_scan
func niox_stop_scan() {
	defer guard("niox_stop_scan")
	gateway.Instance().StopCurrentScan()
}

//export niox_teardown
func niox_teardown() {
	defer guard("niox_teardown")
	gateway.Instance().Teardown()
}

//export niox_static_info
func niox_static_info() *C.char {
	defer guard("niox_static_info")
	staticInfoOnce.Do(func() {
		staticInfoPtr = C.CString(gateway.Instance().StaticInfo())
	})
	return staticInfoPtr
}

// guard keeps panics on the Go side of the boundary. The boundary has
// no error channel for them; recovered calls degrade to their failure
// return value instead of aborting the host process.
func guard(op string) {
	if r := recover(); r != nil {
		logPanic(op, r)
	}
}

func logPanic(op string, r any) {
	logrus.WithFields(logrus.Fields{
		"op":    op,
		"panic": r,
	}).Error("recovered panic at foreign call boundary")
}

func main() {}
