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

import (
	"fmt"
	"slices"
	"strings"
)

// Path is a construct for describing a hierarchical-name path through an
// instance tree.  A path can be either *absolute* (it begins at a root
// instance, e.g. "tb_top.uut.counter") or *relative* (it begins at the
// currently enclosing module, e.g. "u_sub.data").
type Path struct {
	// Indicates whether or not this is an absolute path.
	absolute bool
	// Segments in the path, outermost first.
	segments []string
}

// NewAbsolutePath constructs a new absolute path from the given segments.
func NewAbsolutePath(segments ...string) Path {
	return Path{true, segments}
}

// NewRelativePath constructs a new relative path from the given segments.
func NewRelativePath(segments ...string) Path {
	return Path{false, segments}
}

// Depth returns the number of segments in this path.
func (p *Path) Depth() uint {
	return uint(len(p.segments))
}

// IsAbsolute determines whether or not this is an absolute path.
func (p *Path) IsAbsolute() bool {
	return p.absolute
}

// Segments returns the raw segment list, outermost first.
func (p *Path) Segments() []string {
	return p.segments
}

// Head returns the first (i.e. outermost) segment in this path.
func (p *Path) Head() string {
	return p.segments[0]
}

// Dehead removes the head from this path, returning an otherwise identical
// path.  Observe that, if this were absolute, it is no longer!
func (p *Path) Dehead() *Path {
	return &Path{false, p.segments[1:]}
}

// Tail returns the last (i.e. innermost) segment in this path.
func (p *Path) Tail() string {
	n := len(p.segments) - 1
	return p.segments[n]
}

// Get returns the nth segment of this path.
func (p *Path) Get(nth uint) string {
	return p.segments[nth]
}

// Equals determines whether two paths are the same.
func (p *Path) Equals(other Path) bool {
	return p.absolute == other.absolute && slices.Equal(p.segments, other.segments)
}

// PrefixOf checks whether this path is a prefix of the other.
func (p *Path) PrefixOf(other Path) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}
	//
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	// Looks good
	return true
}

// Slice returns the subpath starting from the given segment.
func (p *Path) Slice(start uint) *Path {
	return &Path{false, p.segments[start:]}
}

// PushRoot converts a relative path into an absolute path by pushing the
// "root" of the tree onto the head (i.e. outermost) position.
func (p *Path) PushRoot(tail string) *Path {
	if p.absolute {
		panic("cannot push root onto absolute path")
	}
	// Prepend root to segments
	nsegments := Prepend(tail, p.segments)
	// Convert to absolute path
	return &Path{true, nsegments}
}

// Parent returns the parent of this path.
func (p *Path) Parent() *Path {
	n := p.Depth() - 1
	return &Path{p.absolute, p.segments[0:n]}
}

// Extend returns this path extended with a new innermost segment.
func (p *Path) Extend(tail string) *Path {
	return &Path{p.absolute, Append(p.segments, tail)}
}

// Slug replaces every run of '.' and whitespace in the dotted rendering of
// this path with a single underscore, matching the canonical-port-name rule
// of the XMR planner (join('_', segments)).
func (p *Path) Slug() string {
	return strings.Join(p.segments, "_")
}

// String returns the dotted textual form of this path, e.g. "u_mid.u_bottom".
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// GoString supports fmt's %#v for debugging.
func (p *Path) GoString() string {
	return fmt.Sprintf("Path{absolute:%v, segments:%v}", p.absolute, p.segments)
}
