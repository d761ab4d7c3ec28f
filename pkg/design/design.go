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

// Package design holds the pure, frontend-independent data model of an
// elaborated hardware design: module definitions, their ports, and the
// instance tree connecting them.  Nothing in this package knows anything
// about SystemVerilog syntax; pkg/sv populates it, and pkg/hier, pkg/detect,
// pkg/plan and pkg/rewrite consume it.
package design

import "fmt"

// Direction is the direction of a module port.
type Direction uint

// Recognised port directions.
const (
	Input Direction = iota
	Output
	Inout
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Inout:
		return "inout"
	default:
		return "input"
	}
}

// Port describes a single named port of a module definition.
type Port struct {
	Name      string
	Direction Direction
	Width     uint
}

// InstanceRef names one child instantiation as it appears textually within a
// module body, before the instance tree has been built.
type InstanceRef struct {
	ModuleType   string
	InstanceName string
}

// Signal is an internal net or variable declared inside a module (as
// opposed to a Port, which is visible at instantiation sites). XMRs most
// often target exactly this kind of signal, since an already-exported port
// is rarely what a hierarchical reference bothers to reach for.
type Signal struct {
	Name  string
	Width uint
}

// ModuleDefinition is everything known about a single "module ... endmodule"
// declaration: its ports, its internal signals, and the instances it
// directly creates.
type ModuleDefinition struct {
	Name      string
	Ports     []Port
	Signals   []Signal
	Instances []InstanceRef
}

// PortByName finds a declared port by name, if any.
func (m *ModuleDefinition) PortByName(name string) (Port, bool) {
	for _, p := range m.Ports {
		if p.Name == name {
			return p, true
		}
	}
	//
	return Port{}, false
}

// SignalByName finds a declared internal signal by name, if any.
func (m *ModuleDefinition) SignalByName(name string) (Signal, bool) {
	for _, s := range m.Signals {
		if s.Name == name {
			return s, true
		}
	}
	//
	return Signal{}, false
}

// ResolveName finds any named entity visible inside this module — port or
// internal signal — returning its width and whether it was already an
// (exportable) port.
func (m *ModuleDefinition) ResolveName(name string) (width uint, isPort bool, found bool) {
	if p, ok := m.PortByName(name); ok {
		return p.Width, true, true
	}
	//
	if s, ok := m.SignalByName(name); ok {
		return s.Width, false, true
	}
	//
	return 0, false, false
}

// InstanceNode is one node of the elaborated instance tree: a specific
// instantiation of a ModuleDefinition, reachable from some root by a unique
// sequence of instance names.
type InstanceNode struct {
	InstanceName string
	Definition   *ModuleDefinition
	Parent       *InstanceNode // nil for a root/top instance
	Children     []*InstanceNode
}

// ChildByName finds a direct child instance by its instance name.
func (n *InstanceNode) ChildByName(name string) (*InstanceNode, bool) {
	for _, c := range n.Children {
		if c.InstanceName == name {
			return c, true
		}
	}
	//
	return nil, false
}

// Design is the full elaborated design: the flat module-definition table
// (keyed by module name) plus the instance forest built from it.
type Design struct {
	Modules map[string]*ModuleDefinition
	// Roots holds one InstanceNode per top-level module: a module which no
	// other parsed module instantiates.  Each root's InstanceName equals its
	// module's Name.
	Roots []*InstanceNode
}

// Build constructs the instance forest from Modules.  A module is
// considered a potential root unless some other module instantiates it; a
// module instantiated by more than one distinct parent still produces one
// InstanceNode per instantiation site, since the instance tree — not the
// module definition — is what hierarchical paths navigate.
func (d *Design) Build() error {
	instantiated := make(map[string]bool)
	//
	for _, m := range d.Modules {
		for _, ref := range m.Instances {
			instantiated[ref.ModuleType] = true
		}
	}
	//
	var rootNames []string
	//
	for name := range d.Modules {
		if !instantiated[name] {
			rootNames = append(rootNames, name)
		}
	}
	//
	if len(rootNames) == 0 && len(d.Modules) > 0 {
		return fmt.Errorf("design contains no top-level module (every module is instantiated by another)")
	}
	//
	for _, name := range rootNames {
		root := &InstanceNode{InstanceName: name, Definition: d.Modules[name]}
		d.buildChildren(root)
		d.Roots = append(d.Roots, root)
	}
	//
	return nil
}

func (d *Design) buildChildren(node *InstanceNode) {
	for _, ref := range node.Definition.Instances {
		childDef, ok := d.Modules[ref.ModuleType]
		if !ok {
			// Instantiation of a module never declared in any parsed file
			// (e.g. a vendor primitive); represented with a nil definition
			// so the hierarchy still records the instance name, but no
			// signal inside it can ever be resolved as an XMR target.
			childDef = nil
		}
		//
		child := &InstanceNode{InstanceName: ref.InstanceName, Definition: childDef, Parent: node}
		node.Children = append(node.Children, child)
		//
		if childDef != nil {
			d.buildChildren(child)
		}
	}
}

// ModuleByName looks up a module definition by name.
func (d *Design) ModuleByName(name string) (*ModuleDefinition, bool) {
	m, ok := d.Modules[name]
	return m, ok
}
