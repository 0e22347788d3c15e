// pool.go: Buffer pooling for stream and file hashing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"sync"
)

// streamBufferSize is the read size used when hashing streams and files.
const streamBufferSize = 32 * 1024

var streamBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, streamBufferSize)
		return &buf // pointer avoids an allocation on Put (SA6002)
	},
}

// getStreamBuffer retrieves a full-length read buffer from the pool.
func getStreamBuffer() *[]byte {
	buf := streamBufferPool.Get().(*[]byte)
	*buf = (*buf)[:streamBufferSize]
	return buf
}

// putStreamBuffer zeroes the buffer and returns it to the pool. Buffers of
// foreign capacity are dropped.
func putStreamBuffer(buf *[]byte) {
	if buf == nil || cap(*buf) != streamBufferSize {
		return
	}
	Zeroize((*buf)[:cap(*buf)])
	streamBufferPool.Put(buf)
}
