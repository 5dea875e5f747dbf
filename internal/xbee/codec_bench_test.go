package xbee

import (
	"crypto/rand"
	"testing"
)

func BenchmarkAppendFrame(b *testing.B) {
	payload := make([]byte, 100)
	rand.Read(payload)
	dst := make([]byte, 0, 256)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		dst = AppendFrame(dst[:0], payload)
	}
}

func BenchmarkDecodeFrame(b *testing.B) {
	payload := make([]byte, 100)
	rand.Read(payload)
	wire := AppendFrame(nil, payload)
	d := New(&chunkTransport{}, make([]byte, DefaultRingSize))
	out := make([]byte, MaxFrame)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.recvIdx = 0
		d.recvSize = copy(d.buf, wire)
		if n := d.DecodeFrame(out); n != len(payload) {
			b.Fatalf("decode failed: %d", n)
		}
	}
}

func BenchmarkDecodeFrame_Wrapped(b *testing.B) {
	payload := make([]byte, 100)
	rand.Read(payload)
	wire := AppendFrame(nil, payload)
	d := New(&chunkTransport{}, make([]byte, DefaultRingSize))
	out := make([]byte, MaxFrame)
	half := DefaultRingSize - len(wire)/2
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.recvIdx = half
		for j, raw := range wire {
			d.buf[(half+j)%DefaultRingSize] = raw
		}
		d.recvSize = len(wire)
		if n := d.DecodeFrame(out); n != len(payload) {
			b.Fatalf("decode failed: %d", n)
		}
	}
}
