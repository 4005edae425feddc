// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bounded

import "github.com/consensys/go-cegar/pkg/formula"

// interval is a range of integers, either end of which may be unbounded.
type interval struct {
	lo   int64
	hi   int64
	noLo bool
	noHi bool
}

// unbounded contains every integer.
var unbounded = interval{noLo: true, noHi: true}

func point(v int64) interval {
	return interval{lo: v, hi: v}
}

func (i interval) isPoint() bool {
	return !i.noLo && !i.noHi && i.lo == i.hi
}

// saturate returns the interval represented by a value of this domain, where
// either end stands for every value beyond it.
func (d Domain) saturate(v int64) interval {
	i := point(v)
	i.noLo = v == d.Min
	i.noHi = v == d.Max
	//
	return i
}

// applyInterval applies an arithmetic operator to every pair of values drawn
// from two intervals, returning an interval containing all results.
func applyInterval(op formula.ArithOp, a interval, b interval) interval {
	if a.isPoint() && b.isPoint() {
		return point(formula.ApplyArith(op, a.lo, b.lo))
	}
	//
	switch op {
	case formula.ADD:
		return interval{a.lo + b.lo, a.hi + b.hi, a.noLo || b.noLo, a.noHi || b.noHi}
	case formula.SUB:
		return interval{a.lo - b.hi, a.hi - b.lo, a.noLo || b.noHi, a.noHi || b.noLo}
	case formula.MUL:
		if b.isPoint() {
			return scale(a, b.lo)
		} else if a.isPoint() {
			return scale(b, a.lo)
		}
		//
		return unbounded
	default:
		return unbounded
	}
}

// scale multiplies every value of an interval by a constant.
func scale(i interval, c int64) interval {
	switch {
	case c == 0:
		return point(0)
	case c > 0:
		return interval{i.lo * c, i.hi * c, i.noLo, i.noHi}
	default:
		return interval{i.hi * c, i.lo * c, i.noHi, i.noLo}
	}
}

// below checks whether every value of a is strictly less than every value of b.
func below(a interval, b interval) bool {
	return !a.noHi && !b.noLo && a.hi < b.lo
}

// atMost checks whether every value of a is at most every value of b.
func atMost(a interval, b interval) bool {
	return !a.noHi && !b.noLo && a.hi <= b.lo
}

// compareIntervals determines the truth of a comparison between every pair of
// values drawn from two intervals.  The second result is false when the
// comparison holds for some pairs but not others.
func compareIntervals(op formula.CmpOp, a interval, b interval) (bool, bool) {
	switch op {
	case formula.EQ, formula.NEQ:
		eq := a.isPoint() && b.isPoint() && a.lo == b.lo
		//
		if eq || below(a, b) || below(b, a) {
			return eq == (op == formula.EQ), true
		}
	case formula.LT:
		return decided(below(a, b), atMost(b, a))
	case formula.LTEQ:
		return decided(atMost(a, b), below(b, a))
	case formula.GT:
		return decided(below(b, a), atMost(a, b))
	case formula.GTEQ:
		return decided(atMost(b, a), below(a, b))
	}
	//
	return false, false
}

func decided(always bool, never bool) (bool, bool) {
	return always, always || never
}
