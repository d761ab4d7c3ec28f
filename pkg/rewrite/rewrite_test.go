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
package rewrite

import (
	"strings"
	"testing"

	"github.com/opensv/xmreliminator/pkg/detect"
	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/plan"
	"github.com/opensv/xmreliminator/pkg/source"
	"github.com/opensv/xmreliminator/pkg/sv"
	"github.com/opensv/xmreliminator/pkg/xerrs"
)

const testDesign = `
module sub(
  input wire clk,
  output wire [7:0] data
);
  assign data = 8'hAA;
endmodule

module top(
  input wire clk
);
  wire [7:0] local_data;
  sub u_sub(.clk(clk), .data(local_data));
  wire [7:0] snoop;
  assign snoop = u_sub.data;
endmodule
`

func buildPipeline(t *testing.T) ([]*sv.File, *plan.ChangeSet) {
	t.Helper()

	srcs := []source.File{*source.NewFile("design.sv", []byte(testDesign))}

	d, files, errs := sv.Elaborate(srcs)
	if len(errs) > 0 {
		t.Fatalf("unexpected elaboration errors: %v", errs)
	}

	idx := hier.Build(d)
	det := detect.New(d, idx)

	var occs []*detect.Occurrence

	for _, f := range files {
		fOccs, diags := det.DetectFile(f)
		if len(diags) > 0 {
			t.Fatalf("unexpected detection diagnostics: %v", diags)
		}

		occs = append(occs, fOccs...)
	}

	pl := plan.New(d, idx, plan.Config{})

	cs, diag := pl.Plan(occs)
	if diag != nil {
		t.Fatalf("unexpected planning diagnostic: %v", diag)
	}

	return files, cs
}

func TestApplySpliceProducesValidText(t *testing.T) {
	files, cs := buildPipeline(t)

	r := New(files)

	out, diags := r.Apply(cs)
	if len(diags) != 0 {
		t.Fatalf("unexpected rewrite diagnostics: %v", diags)
	}

	text, ok := out["design.sv"]
	if !ok {
		t.Fatal("expected rewritten text for design.sv")
	}

	if strings.Contains(text, "u_sub.data") {
		t.Error("rewritten text still contains the original hierarchical reference")
	}

	if !strings.Contains(text, "__xmr__") {
		t.Error("rewritten text should carry a canonical __xmr__ port name")
	}

	if !strings.Contains(text, ".clk(clk)") {
		t.Error("rewritten text should retain the original clk connection")
	}

	if strings.Contains(text, "8'hAA") == false {
		t.Error("rewritten text should retain the original, untouched assign in sub")
	}
}

func TestApplyUnknownModuleIsNonFatal(t *testing.T) {
	files, _ := buildPipeline(t)

	r := New(files)

	cs := &plan.ChangeSet{
		Ports: []plan.PortAddition{{Module: "ghost", Name: "__xmr__x", Width: 1}},
	}

	out, diags := r.Apply(cs)

	if len(diags) != 1 || diags[0].Severity != xerrs.Warning {
		t.Fatalf("expected exactly one warning diagnostic for the dropped change, got %v", diags)
	}

	if len(out) != 0 {
		t.Errorf("expected no output files, since the only change named an unparsed module, got %v", out)
	}
}

func TestApplyIsolatesOverlapToItsOwnFile(t *testing.T) {
	files, cs := buildPipeline(t)

	r := New(files)

	// A second, malformed change set that forces two edits to collide on the
	// same hierarchical-name span, by duplicating a replacement for an
	// occurrence that already has one queued via cs.Replacements.
	broken := &plan.ChangeSet{Replacements: append(append([]plan.Replacement{}, cs.Replacements...), cs.Replacements...)}

	out, diags := r.Apply(broken)

	if len(diags) == 0 {
		t.Fatal("expected a warning diagnostic for the overlapping replacements")
	}

	text, ok := out["design.sv"]
	if !ok {
		t.Fatal("expected design.sv to still be present in the output, as an empty string")
	}

	if text != "" {
		t.Errorf("expected design.sv's output to be the empty string after a splice failure, got %q", text)
	}
}
