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
package plan

import (
	"testing"

	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/detect"
	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/util"
)

// buildTopSub builds a two-level design: top instantiates sub as u_sub, sub
// declares an internal signal "internal" and a clk/rst_n port pair.
func buildTopSub(t *testing.T) (*design.Design, *hier.Index) {
	t.Helper()

	sub := &design.ModuleDefinition{
		Name: "sub",
		Ports: []design.Port{
			{Name: "clk", Direction: design.Input, Width: 1},
			{Name: "rst_n", Direction: design.Input, Width: 1},
		},
		Signals: []design.Signal{{Name: "internal", Width: 4}},
	}
	top := &design.ModuleDefinition{
		Name: "top",
		Ports: []design.Port{
			{Name: "clk", Direction: design.Input, Width: 1},
			{Name: "rst_n", Direction: design.Input, Width: 1},
		},
		Instances: []design.InstanceRef{{ModuleType: "sub", InstanceName: "u_sub"}},
	}

	d := &design.Design{Modules: map[string]*design.ModuleDefinition{"top": top, "sub": sub}}
	if err := d.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	return d, hier.Build(d)
}

func TestPlanDownwardReadAddsPortAndConnection(t *testing.T) {
	d, idx := buildTopSub(t)

	occ := &detect.Occurrence{
		SourceModule: "top",
		TargetModule: "sub",
		TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"),
		BitWidth:     4,
	}

	pl := New(d, idx, Config{})

	cs, diag := pl.Plan([]*detect.Occurrence{occ})
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	// One new output port on sub (the leaf, exposing "internal" outward) and
	// one plain wire on top itself (the lowest common ancestor, here equal
	// to the source module): top never gets a new port, since nothing above
	// it ever references the value.
	if len(cs.Ports) != 1 {
		t.Fatalf("expected one new port (the leaf on sub), got %+v", cs.Ports)
	}

	if cs.Ports[0].Module != "sub" || cs.Ports[0].Direction != design.Output {
		t.Errorf("expected sub's leaf port to be a new output, got %+v", cs.Ports[0])
	}

	if len(cs.Wires) != 1 || cs.Wires[0].Module != "top" {
		t.Fatalf("expected one wire on top (the LCA landing net), got %+v", cs.Wires)
	}

	if cs.Wires[0].Name != cs.Ports[0].Name {
		t.Errorf("expected the wire on top and the port on sub to share the canonical name, got wire=%q port=%q",
			cs.Wires[0].Name, cs.Ports[0].Name)
	}

	if len(cs.Connections) != 1 || cs.Connections[0].AtModule != "top" || cs.Connections[0].InstanceName != "u_sub" {
		t.Fatalf("expected one new connection at top's u_sub instantiation, got %+v", cs.Connections)
	}

	if len(cs.Assigns) != 1 {
		t.Fatalf("expected one assign exposing the internal signal, got %+v", cs.Assigns)
	}

	if len(cs.Replacements) != 1 || cs.Replacements[0].NewText != cs.Wires[0].Name {
		t.Fatalf("expected the occurrence replaced with the new canonical wire name, got %+v", cs.Replacements)
	}
}

func TestPlanSelfReferenceIsNoop(t *testing.T) {
	d, idx := buildTopSub(t)

	occ := &detect.Occurrence{
		SourceModule:  "top",
		TargetModule:  "top",
		TargetSignal:  "clk",
		SelfReference: true,
	}

	pl := New(d, idx, Config{})

	cs, diag := pl.Plan([]*detect.Occurrence{occ})
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	if cs.NoopCount != 1 {
		t.Errorf("expected NoopCount 1, got %d", cs.NoopCount)
	}

	if len(cs.Ports) != 0 || len(cs.Connections) != 0 || len(cs.Replacements) != 0 {
		t.Errorf("self-reference should produce no changes, got %+v", cs)
	}
}

func TestPlanMixedDirectionIsFatal(t *testing.T) {
	d, idx := buildTopSub(t)

	read := &detect.Occurrence{
		SourceModule: "top", TargetModule: "sub", TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"), BitWidth: 4, Direction: design.Direction(0),
	}
	write := &detect.Occurrence{
		SourceModule: "top", TargetModule: "sub", TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"), BitWidth: 4, Direction: design.Direction(1),
	}

	pl := New(d, idx, Config{})

	_, diag := pl.Plan([]*detect.Occurrence{read, write})
	if diag == nil {
		t.Fatal("expected a fatal diagnostic for mixed-direction references to the same path")
	}
}

func TestPlanPipelineRegGlobalInsertsRegBlock(t *testing.T) {
	d, idx := buildTopSub(t)

	occ := &detect.Occurrence{
		SourceModule: "top",
		TargetModule: "sub",
		TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"),
		BitWidth:     4,
	}

	cfg := Config{Mode: PipeRegGlobal, GlobalCount: 2, Clock: "clk", Reset: "rst_n"}
	pl := New(d, idx, cfg)

	cs, diag := pl.Plan([]*detect.Occurrence{occ})
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	if len(cs.RegBlocks) != 1 {
		t.Fatalf("expected one pipeline register block, staging the landing wire on top, got %+v", cs.RegBlocks)
	}

	if cs.RegBlocks[0].Module != "top" {
		t.Errorf("expected the register block to land on top (the LCA landing the value from sub), got %q", cs.RegBlocks[0].Module)
	}

	// top's landing net (canon) plus its dedicated raw landing wire feeding
	// the register chain.
	if len(cs.Wires) != 2 {
		t.Errorf("expected the canon wire and its raw landing wire on top, got %+v", cs.Wires)
	}
}

func TestPlanDedupesRepeatedOccurrences(t *testing.T) {
	d, idx := buildTopSub(t)

	occ1 := &detect.Occurrence{
		SourceModule: "top", TargetModule: "sub", TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"), BitWidth: 4,
	}
	occ2 := &detect.Occurrence{
		SourceModule: "top", TargetModule: "sub", TargetSignal: "internal",
		InstancePath: util.NewRelativePath("u_sub"), BitWidth: 4,
	}

	pl := New(d, idx, Config{})

	cs, diag := pl.Plan([]*detect.Occurrence{occ1, occ2})
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}

	if len(cs.Ports) != 1 || len(cs.Wires) != 1 || len(cs.Connections) != 1 {
		t.Fatalf("expected deduplication across two occurrences reaching the same path, got ports=%+v wires=%+v conns=%+v",
			cs.Ports, cs.Wires, cs.Connections)
	}

	if len(cs.Replacements) != 2 {
		t.Errorf("expected a replacement recorded for each occurrence, got %d", len(cs.Replacements))
	}
}
