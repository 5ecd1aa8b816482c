package ugen

import (
	"math"
	"sync/atomic"
)

// atomicFloat holds a float64 as its bit pattern so a control-thread write
// can never tear against an audio-thread read.
type atomicFloat struct{ bits atomic.Uint64 }

func (a *atomicFloat) Store(v float64) { a.bits.Store(math.Float64bits(v)) }
func (a *atomicFloat) Load() float64   { return math.Float64frombits(a.bits.Load()) }
