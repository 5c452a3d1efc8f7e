// Package ints implements a compact set of small non-negative integers, e.g. rule indexes.
package ints

import (
	"math/bits"
)

const chunkShift = 5 + (^uint(0) >> 32 & 1)
const chunkSize = 1 << chunkShift

// Set is a bit set. Negative items are ignored.
type Set struct {
	chunks []uint
}

func NewSet(items ...int) *Set {
	res := &Set{}
	res.Add(items...)
	return res
}

func chunkIndex(item int) int {
	return item >> chunkShift
}

func bitMask(item int) uint {
	return 1 << (uint(item) & (chunkSize - 1))
}

func (s *Set) allocate(item int) {
	ci := chunkIndex(item)
	if ci < len(s.chunks) {
		return
	}

	chunks := make([]uint, ci+1)
	copy(chunks, s.chunks)
	s.chunks = chunks
}

func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		if item < 0 {
			continue
		}

		s.allocate(item)
		s.chunks[chunkIndex(item)] |= bitMask(item)
	}
	return s
}

func (s *Set) Remove(items ...int) *Set {
	for _, item := range items {
		if item < 0 || chunkIndex(item) >= len(s.chunks) {
			continue
		}

		s.chunks[chunkIndex(item)] &^= bitMask(item)
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 || chunkIndex(item) >= len(s.chunks) {
		return false
	}
	return s.chunks[chunkIndex(item)]&bitMask(item) != 0
}

func (s *Set) Len() int {
	res := 0
	for _, chunk := range s.chunks {
		res += bits.OnesCount(chunk)
	}
	return res
}

func (s *Set) IsEmpty() bool {
	for _, chunk := range s.chunks {
		if chunk != 0 {
			return false
		}
	}
	return true
}

// ToSlice returns items in ascending order.
func (s *Set) ToSlice() []int {
	res := make([]int, 0, s.Len())
	for ci, chunk := range s.chunks {
		for chunk != 0 {
			bit := bits.TrailingZeros(chunk)
			res = append(res, ci<<chunkShift+bit)
			chunk &= chunk - 1
		}
	}
	return res
}

func (s *Set) Copy() *Set {
	chunks := make([]uint, len(s.chunks))
	copy(chunks, s.chunks)
	return &Set{chunks}
}
