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

// Package hier builds a navigable index over an elaborated design's instance
// tree: given an absolute or relative path of instance names, find the node
// it denotes in a single lookup rather than a fresh tree walk.
package hier

import (
	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/util"
)

// Index is the elaborated hierarchy: a table mapping every absolute
// instance-path (dotted from some root) to the InstanceNode it denotes, plus
// a reverse index from module name to every absolute path at which that
// module is instantiated.  Built by a single pre-order traversal of the
// design's instance forest.
type Index struct {
	design *design.Design
	// byPath maps an absolute path's dotted string form to its node.
	byPath map[string]*design.InstanceNode
	// byModule maps a module name to every absolute path instantiating it.
	byModule map[string][]util.Path
	roots    []string
}

// Build constructs a hierarchy index from an already-elaborated design.
func Build(d *design.Design) *Index {
	idx := &Index{
		design:   d,
		byPath:   make(map[string]*design.InstanceNode),
		byModule: make(map[string][]util.Path),
	}
	//
	for _, root := range d.Roots {
		idx.roots = append(idx.roots, root.InstanceName)
		idx.visit(util.NewAbsolutePath(root.InstanceName), root)
	}
	//
	return idx
}

func (idx *Index) visit(path util.Path, node *design.InstanceNode) {
	idx.byPath[path.String()] = node
	//
	if node.Definition != nil {
		idx.byModule[node.Definition.Name] = append(idx.byModule[node.Definition.Name], path)
	}
	//
	for _, child := range node.Children {
		idx.visit(*path.Extend(child.InstanceName), child)
	}
}

// TopModules returns the instance name (equivalently, the module name) of
// every root instance in the design, i.e. every module never instantiated
// by another.
func (idx *Index) TopModules() []string {
	return idx.roots
}

// NodeAt resolves an absolute dotted instance path (e.g. "tb_top.uut") to
// its InstanceNode.
func (idx *Index) NodeAt(path util.Path) (*design.InstanceNode, bool) {
	n, ok := idx.byPath[path.String()]
	return n, ok
}

// ChildOf returns the direct child of parent named instanceName, if any.
func (idx *Index) ChildOf(parent *design.InstanceNode, instanceName string) (*design.InstanceNode, bool) {
	return parent.ChildByName(instanceName)
}

// PathsTo returns every absolute path at which the named module is
// instantiated in the design.
func (idx *Index) PathsTo(moduleName string) []util.Path {
	return idx.byModule[moduleName]
}

// AbsolutePathOf reconstructs the absolute path from a design root down to
// node, by walking Parent links.
func AbsolutePathOf(node *design.InstanceNode) util.Path {
	var segments []string
	//
	for n := node; n != nil; n = n.Parent {
		segments = append([]string{n.InstanceName}, segments...)
	}
	//
	return util.NewAbsolutePath(segments...)
}
