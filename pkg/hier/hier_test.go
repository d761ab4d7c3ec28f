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
package hier

import (
	"testing"

	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/util"
)

func buildTestDesign(t *testing.T) *design.Design {
	t.Helper()

	counter := &design.ModuleDefinition{Name: "counter"}
	uut := &design.ModuleDefinition{
		Name:      "uut",
		Instances: []design.InstanceRef{{ModuleType: "counter", InstanceName: "u_counter"}},
	}
	tbTop := &design.ModuleDefinition{
		Name:      "tb_top",
		Instances: []design.InstanceRef{{ModuleType: "uut", InstanceName: "uut"}},
	}

	d := &design.Design{Modules: map[string]*design.ModuleDefinition{
		"counter": counter,
		"uut":     uut,
		"tb_top":  tbTop,
	}}

	if err := d.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	return d
}

func TestIndexTopModules(t *testing.T) {
	idx := Build(buildTestDesign(t))

	tops := idx.TopModules()
	if len(tops) != 1 || tops[0] != "tb_top" {
		t.Fatalf("TopModules() = %v, want [tb_top]", tops)
	}
}

func TestIndexNodeAt(t *testing.T) {
	idx := Build(buildTestDesign(t))

	node, ok := idx.NodeAt(util.NewAbsolutePath("tb_top", "uut", "u_counter"))
	if !ok {
		t.Fatal("expected to find node at tb_top.uut.u_counter")
	}

	if node.Definition == nil || node.Definition.Name != "counter" {
		t.Errorf("unexpected node definition: %+v", node.Definition)
	}

	if _, ok := idx.NodeAt(util.NewAbsolutePath("tb_top", "ghost")); ok {
		t.Error("expected no node at a nonexistent path")
	}
}

func TestIndexPathsTo(t *testing.T) {
	idx := Build(buildTestDesign(t))

	paths := idx.PathsTo("counter")
	if len(paths) != 1 {
		t.Fatalf("expected 1 path to counter, got %d", len(paths))
	}

	if got, want := paths[0].String(), "tb_top.uut.u_counter"; got != want {
		t.Errorf("PathsTo(counter)[0] = %q, want %q", got, want)
	}
}

func TestAbsolutePathOf(t *testing.T) {
	d := buildTestDesign(t)
	idx := Build(d)

	node, ok := idx.NodeAt(util.NewAbsolutePath("tb_top", "uut"))
	if !ok {
		t.Fatal("expected to find node at tb_top.uut")
	}

	if got, want := AbsolutePathOf(node).String(), "tb_top.uut"; got != want {
		t.Errorf("AbsolutePathOf() = %q, want %q", got, want)
	}
}
