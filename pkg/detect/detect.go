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

// Package detect implements cross-module-reference detection: scanning
// every hierarchical-name expression the frontend found and resolving it,
// against the elaborated design and its hierarchy index, into a fully
// classified occurrence (source module, target module/signal, resolved
// path, direction, width).
package detect

import (
	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/sv"
	"github.com/opensv/xmreliminator/pkg/util"
	"github.com/opensv/xmreliminator/pkg/xerrs"
)

// Occurrence is a single resolved use of a hierarchical name somewhere in a
// module's text.
type Occurrence struct {
	// SourceModule is the module in whose text this reference appears.
	SourceModule string
	// Node is the originating syntax node, retained so the rewriter can
	// find and replace its exact span.
	Node *sv.HierName
	// InstancePath holds the instance-name hops from SourceModule (for a
	// relative/downward reference) or from a design root (for an absolute
	// reference) down to, but not including, the target signal.
	InstancePath util.Path
	// TargetModule is the module in which TargetSignal is declared.
	TargetModule string
	// TargetSignal is the final (signal) segment of the reference.
	TargetSignal string
	// Absolute is true when the reference began at a root instance name
	// rather than at a child of SourceModule.
	Absolute bool
	// SelfReference is true when the path resolves with zero instance
	// hops, i.e. it names a port/signal of SourceModule itself.
	SelfReference bool
	// Direction is always Read in this release: the frontend does not parse
	// DPI-C import declarations or call-statement argument lists, so the one
	// documented write-XMR path (an XMR bound to an output/inout foreign
	// function argument) is never produced — see DESIGN.md's "Known
	// limitation" entry on DPI write-XMR detection. Kept as a field, rather
	// than assumed, so the planner's mixed-direction check and its write-case
	// port/assign shape stay meaningful once that coverage is added.
	Direction design.Direction
	BitWidth  uint
	Array     string
	// TargetIsPort is true when TargetSignal already names a port of
	// TargetModule, false when it names an internal signal. The planner
	// exposes the target through a newly synthesised output port in either
	// case.
	TargetIsPort bool
}

// CanonicalPath renders the fully resolved path as dotted text, suitable as
// the de-duplication key spec.md's planner uses: (SourceModule, this
// string).
func (o *Occurrence) CanonicalPath() string {
	if o.SelfReference {
		return o.TargetSignal
	}
	//
	return o.InstancePath.String() + "." + o.TargetSignal
}

// Detector resolves hierarchical-name syntax nodes against an elaborated
// design.
type Detector struct {
	design *design.Design
	index  *hier.Index
}

// New constructs a Detector over an already-built design and hierarchy
// index.
func New(d *design.Design, idx *hier.Index) *Detector {
	return &Detector{design: d, index: idx}
}

// DetectFile scans every module in a parsed file and resolves every
// multi-segment hierarchical name it contains. Single-segment names (plain
// identifiers) are never candidates and are silently skipped.
func (det *Detector) DetectFile(f *sv.File) ([]*Occurrence, []*xerrs.Diagnostic) {
	var occs []*Occurrence
	var diags []*xerrs.Diagnostic
	//
	for _, m := range f.Modules {
		moduleName := m.Name.Text
		//
		for _, hn := range collectHierNames(m) {
			if len(hn.Segments) < 2 {
				continue
			}
			//
			occ, diag := det.resolve(moduleName, hn)
			if diag != nil {
				diag.File = f.Source
				span := hn.Span()
				diag.Span = &span
				diags = append(diags, diag)
				continue
			}
			//
			occs = append(occs, occ)
		}
	}
	//
	return occs, diags
}

func collectHierNames(m *sv.ModuleDecl) []*sv.HierName {
	var out []*sv.HierName
	//
	for _, item := range m.Items {
		switch it := item.(type) {
		case *sv.Assign:
			out = append(out, it.HierNames...)
		case *sv.AlwaysBlock:
			out = append(out, it.HierNames...)
		case *sv.RawItem:
			out = append(out, it.HierNames...)
		case *sv.Instantiation:
			for _, conn := range it.Connections {
				if hn, ok := conn.Expr.(*sv.HierName); ok {
					out = append(out, hn)
				}
			}
		}
	}
	//
	return out
}

func (det *Detector) isTopModule(name string) bool {
	for _, t := range det.index.TopModules() {
		if t == name {
			return true
		}
	}
	//
	return false
}

func (det *Detector) resolve(sourceModule string, hn *sv.HierName) (*Occurrence, *xerrs.Diagnostic) {
	segs := hn.Segments
	signal := segs[len(segs)-1]
	hops := segs[:len(segs)-1]
	array := hn.ArraySuffix()
	//
	if det.isTopModule(segs[0]) && !(segs[0] == sourceModule && len(segs) == 2) {
		node, ok := det.index.NodeAt(util.NewAbsolutePath(hops...))
		if !ok || node.Definition == nil {
			return nil, xerrs.New(xerrs.UnknownChildInstance,
				"%q names no instance in the design hierarchy", hn.BasePath())
		}
		//
		width, isPort, ok := node.Definition.ResolveName(signal)
		if !ok {
			return nil, xerrs.New(xerrs.UnknownChildInstance,
				"module %q has no port or signal named %q", node.Definition.Name, signal)
		}
		//
		return &Occurrence{
			SourceModule: sourceModule,
			Node:         hn,
			InstancePath: util.NewAbsolutePath(hops...),
			TargetModule: node.Definition.Name,
			TargetSignal: signal,
			Absolute:     true,
			BitWidth:     width,
			Array:        array,
			TargetIsPort: isPort,
		}, nil
	}
	//
	if segs[0] == sourceModule && len(segs) == 2 {
		if m, ok := det.design.ModuleByName(sourceModule); ok {
			if width, isPort, ok := m.ResolveName(signal); ok {
				return &Occurrence{
					SourceModule:  sourceModule,
					Node:          hn,
					InstancePath:  util.NewRelativePath(),
					TargetModule:  sourceModule,
					TargetSignal:  signal,
					SelfReference: true,
					BitWidth:      width,
					Array:         array,
					TargetIsPort:  isPort,
				}, nil
			}
		}
	}
	//
	cur, ok := det.design.ModuleByName(sourceModule)
	if !ok {
		return nil, xerrs.New(xerrs.FrontendCompile, "module %q was never declared", sourceModule)
	}
	//
	for _, seg := range hops {
		var next *design.ModuleDefinition
		//
		for _, ref := range cur.Instances {
			if ref.InstanceName == seg {
				next, ok = det.design.ModuleByName(ref.ModuleType)
				break
			}
		}
		//
		if next == nil {
			return nil, xerrs.New(xerrs.UnknownChildInstance,
				"%q names no instance reachable from module %q", hn.BasePath(), sourceModule)
		}
		//
		cur = next
	}
	//
	width, isPort, ok := cur.ResolveName(signal)
	if !ok {
		return nil, xerrs.New(xerrs.UnknownChildInstance,
			"module %q has no port or signal named %q", cur.Name, signal)
	}
	//
	return &Occurrence{
		SourceModule: sourceModule,
		Node:         hn,
		InstancePath: util.NewRelativePath(hops...),
		TargetModule: cur.Name,
		TargetSignal: signal,
		BitWidth:     width,
		Array:        array,
		TargetIsPort: isPort,
	}, nil
}
