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
package detect

import (
	"testing"

	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/source"
	"github.com/opensv/xmreliminator/pkg/sv"
)

func elaborate(t *testing.T, text string) (*sv.File, *Detector) {
	t.Helper()

	srcs := []source.File{*source.NewFile("test.sv", []byte(text))}

	d, files, errs := sv.Elaborate(srcs)
	if len(errs) > 0 {
		t.Fatalf("unexpected elaboration errors: %v", errs)
	}

	idx := hier.Build(d)

	return files[0], New(d, idx)
}

func TestDetectDownwardRead(t *testing.T) {
	f, det := elaborate(t, `
module sub(
  input wire clk,
  output wire [7:0] data
);
endmodule

module top(
  input wire clk
);
  sub u_sub(.clk(clk), .data(data));
  wire [7:0] snoop;
  assign snoop = u_sub.data;
endmodule
`)

	occs, diags := det.DetectFile(f)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}

	o := occs[0]
	if o.SourceModule != "top" || o.TargetModule != "sub" || o.TargetSignal != "data" {
		t.Errorf("unexpected occurrence: %+v", o)
	}

	if o.SelfReference || o.Absolute {
		t.Error("expected a plain relative downward reference")
	}

	if o.BitWidth != 8 {
		t.Errorf("expected width 8, got %d", o.BitWidth)
	}
}

func TestDetectSelfReference(t *testing.T) {
	f, det := elaborate(t, `
module top(
  input wire clk,
  input wire [7:0] data
);
  wire [7:0] mirror;
  assign mirror = top.data;
endmodule
`)

	occs, diags := det.DetectFile(f)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if len(occs) != 1 || !occs[0].SelfReference {
		t.Fatalf("expected 1 self-referencing occurrence, got %+v", occs)
	}
}

func TestDetectUnknownInstance(t *testing.T) {
	f, det := elaborate(t, `
module top(
  input wire clk
);
  wire [7:0] snoop;
  assign snoop = ghost.data;
endmodule
`)

	_, diags := det.DetectFile(f)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for a reference to a non-existent instance")
	}
}
