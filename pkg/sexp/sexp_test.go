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
package sexp

import (
	"testing"
)

func TestSexp_0(t *testing.T) {
	CheckOk(t, nil, "")
}

func TestSexp_1(t *testing.T) {
	e1 := List{nil}
	CheckOk(t, &e1, "()")
}

func TestSexp_2(t *testing.T) {
	e1 := List{nil}
	e2 := List{[]SExp{&e1}}
	CheckOk(t, &e2, "(())")
}

func TestSexp_3(t *testing.T) {
	e1 := Symbol{"symbol"}
	CheckOk(t, &e1, "symbol")
}

func TestSexp_4(t *testing.T) {
	e1 := Symbol{"-12345"}
	CheckOk(t, &e1, "-12345")
}

func TestSexp_5(t *testing.T) {
	e1 := Symbol{"<="}
	e2 := Symbol{"x@2"}
	e3 := Symbol{"5"}
	e4 := List{[]SExp{&e1, &e2, &e3}}
	CheckOk(t, &e4, "(<= x@2 5)")
}

func TestSexp_6(t *testing.T) {
	e1 := Symbol{"assume"}
	e2 := Symbol{">"}
	e3 := Symbol{"x"}
	e4 := Symbol{"0"}
	e5 := List{[]SExp{&e2, &e3, &e4}}
	e6 := List{[]SExp{&e1, &e5}}
	CheckOk(t, &e6, "(assume\n  ; guard\n  (> x 0))")
}

func TestSexp_7(t *testing.T) {
	e1 := Symbol{"a"}
	e2 := Symbol{"b"}
	e3 := List{[]SExp{&e1}}
	e4 := List{[]SExp{&e3, &e2}}
	CheckOk(t, &e4, "((a)b)")
}

func TestSexp_Err_1(t *testing.T) {
	CheckErr(t, "(")
}

func TestSexp_Err_2(t *testing.T) {
	CheckErr(t, ")")
}

func TestSexp_Err_3(t *testing.T) {
	CheckErr(t, "(a (b)")
}

func TestSexp_Err_4(t *testing.T) {
	CheckErr(t, "(a) b")
}

func TestSexp_ParseAll_1(t *testing.T) {
	terms, err := ParseAll("(a) b ; trailing\n(c d)")
	if err != nil {
		t.Fatal(err)
	} else if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	} else if terms[2].String() != "(c d)" {
		t.Errorf("unexpected term %s", terms[2].String())
	}
}

func TestSexp_SourceMap_1(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("(edge 0 1\n  (skip))"))
	term, srcmap, err := srcfile.Parse()
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	inner := term.(*List).Get(3)
	span := srcmap.Get(inner)
	line := srcmap.FindFirstEnclosingLine(span)
	//
	if line.Number() != 2 {
		t.Errorf("expected line 2, got %d", line.Number())
	} else if span.Length() != len("(skip)") {
		t.Errorf("unexpected span length %d", span.Length())
	}
}

func TestSexp_Int_1(t *testing.T) {
	if v, ok := NewSymbol("-42").Int(); !ok || v != -42 {
		t.Errorf("expected -42")
	}
	//
	if _, ok := NewSymbol("x").Int(); ok {
		t.Errorf("unexpected integer")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

// CheckOk checks that a given string parses into the expected S-Expression.
func CheckOk(t *testing.T, sexp1 SExp, input string) {
	sexp2, err := Parse(input)
	//
	if err != nil {
		t.Error(err)
	} else if sexp1 == nil && sexp2 != nil {
		t.Errorf("expected nothing, got %s", sexp2.String())
	} else if sexp1 != nil && (sexp2 == nil || sexp1.String() != sexp2.String()) {
		t.Errorf("expected %v, got %v", sexp1, sexp2)
	}
}

// CheckErr checks that a given string fails to parse.
func CheckErr(t *testing.T, input string) {
	_, err := Parse(input)
	//
	if err == nil {
		t.Errorf("input should not have parsed: %s", input)
	}
}
