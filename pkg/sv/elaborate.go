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
package sv

import (
	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/source"
)

// Elaborate parses every given source file and folds the resulting module
// declarations into a design.Design: a flat table of module definitions plus
// the instance tree rooted at each module never itself instantiated by
// another parsed module.
//
// Width information is derived on a best-effort basis: a port's width is
// taken from its declared range when present, defaulting to 1 bit otherwise.
// No attempt is made to propagate parameterised widths, since this frontend
// does not elaborate parameters.
func Elaborate(srcs []source.File) (*design.Design, []*File, []error) {
	var allFiles []*File
	var errs []error
	//
	for i := range srcs {
		sf := &srcs[i]
		//
		f, serr := Parse(sf.Filename(), sf)
		if serr != nil {
			errs = append(errs, serr)
			continue
		}
		//
		allFiles = append(allFiles, f)
	}
	//
	if len(errs) > 0 {
		return nil, nil, errs
	}
	//
	defs := make(map[string]*design.ModuleDefinition)
	//
	for _, f := range allFiles {
		for _, m := range f.Modules {
			def := &design.ModuleDefinition{Name: m.Name.Text}
			//
			for _, p := range m.Ports {
				def.Ports = append(def.Ports, portsFromDecl(p)...)
			}
			//
			for _, it := range m.Items {
				switch v := it.(type) {
				case *Instantiation:
					def.Instances = append(def.Instances, design.InstanceRef{
						ModuleType:   v.ModuleType,
						InstanceName: v.InstanceName,
					})
				case *PortDecl:
					// non-ANSI header: direction declared in the body.
					def.Ports = append(def.Ports, portsFromDecl(v)...)
				case *WireDecl:
					width := uint(1)
					if v.Width != nil {
						width = v.Width.Width()
					}
					//
					for _, name := range v.Names {
						def.Signals = append(def.Signals, design.Signal{Name: name, Width: width})
					}
				}
			}
			//
			defs[def.Name] = def
		}
	}
	//
	d := &design.Design{Modules: defs}
	//
	if err := d.Build(); err != nil {
		return nil, nil, []error{err}
	}
	//
	return d, allFiles, nil
}

func portsFromDecl(p *PortDecl) []design.Port {
	width := uint(1)
	if p.Width != nil {
		width = p.Width.Width()
	}
	//
	var dir design.Direction
	//
	switch p.Direction {
	case KW_INPUT:
		dir = design.Input
	case KW_OUTPUT:
		dir = design.Output
	case KW_INOUT:
		dir = design.Inout
	}
	//
	ports := make([]design.Port, 0, len(p.Names))
	//
	for _, name := range p.Names {
		ports = append(ports, design.Port{Name: name, Direction: dir, Width: width})
	}
	//
	return ports
}
