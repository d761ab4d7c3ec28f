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
package util

import "testing"

func TestPathString(t *testing.T) {
	p := NewAbsolutePath("tb_top", "uut", "counter")
	if got, want := p.String(), "tb_top.uut.counter"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPathSlug(t *testing.T) {
	p := NewAbsolutePath("tb_top", "uut", "counter")
	if got, want := p.Slug(), "tb_top_uut_counter"; got != want {
		t.Errorf("Slug() = %q, want %q", got, want)
	}
}

func TestPathExtend(t *testing.T) {
	p := NewRelativePath("u_sub")
	q := p.Extend("data")

	if q.IsAbsolute() {
		t.Error("Extend should preserve relativity")
	}

	if got, want := q.String(), "u_sub.data"; got != want {
		t.Errorf("Extend().String() = %q, want %q", got, want)
	}
	// p itself must be unchanged.
	if got, want := p.String(), "u_sub"; got != want {
		t.Errorf("original path mutated: got %q, want %q", got, want)
	}
}

func TestPathPushRoot(t *testing.T) {
	p := NewRelativePath("u_sub", "data")
	q := p.PushRoot("tb_top")

	if !q.IsAbsolute() {
		t.Error("PushRoot should produce an absolute path")
	}

	if got, want := q.String(), "tb_top.u_sub.data"; got != want {
		t.Errorf("PushRoot().String() = %q, want %q", got, want)
	}
}

func TestPathPrefixOf(t *testing.T) {
	parent := NewAbsolutePath("tb_top", "uut")
	child := NewAbsolutePath("tb_top", "uut", "counter")

	if !parent.PrefixOf(child) {
		t.Error("parent should be a prefix of child")
	}

	if child.PrefixOf(parent) {
		t.Error("child should not be a prefix of parent")
	}
}

func TestPathEquals(t *testing.T) {
	a := NewAbsolutePath("tb_top", "uut")
	b := NewAbsolutePath("tb_top", "uut")
	c := NewRelativePath("tb_top", "uut")

	if !a.Equals(b) {
		t.Error("identical absolute paths should be equal")
	}

	if a.Equals(c) {
		t.Error("paths differing in absoluteness should not be equal")
	}
}
