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
	"testing"

	"github.com/opensv/xmreliminator/pkg/source"
)

func mustParse(t *testing.T, text string) *File {
	t.Helper()

	sf := source.NewFile("test.sv", []byte(text))

	f, err := Parse("test.sv", sf)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Message())
	}

	return f
}

func TestParseANSIModule(t *testing.T) {
	f := mustParse(t, `
module counter(
  input wire clk,
  output wire [7:0] data
);
endmodule
`)

	if len(f.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(f.Modules))
	}

	m := f.Modules[0]
	if !m.ANSIPorts {
		t.Error("expected an ANSI port list")
	}

	if m.Name.Text != "counter" {
		t.Errorf("module name = %q, want %q", m.Name.Text, "counter")
	}

	if len(m.Ports) != 2 {
		t.Fatalf("expected 2 ports, got %d", len(m.Ports))
	}
}

func TestParseHierNameSegmentsAndArraySuffix(t *testing.T) {
	f := mustParse(t, `
module top(
  input wire clk
);
  wire [7:0] snoop;
  assign snoop = tb_top.uut.counter[3];
endmodule
`)

	m := f.Modules[0]

	var found *HierName

	for _, it := range m.Items {
		if a, ok := it.(*Assign); ok && len(a.HierNames) > 0 {
			found = a.HierNames[0]
		}
	}

	if found == nil {
		t.Fatal("expected to find a HierName in the assign statement")
	}

	wantSegs := []string{"tb_top", "uut", "counter"}
	if len(found.Segments) != len(wantSegs) {
		t.Fatalf("segments = %v, want %v", found.Segments, wantSegs)
	}

	for i, s := range wantSegs {
		if found.Segments[i] != s {
			t.Errorf("segment %d = %q, want %q", i, found.Segments[i], s)
		}
	}

	if got, want := found.BasePath(), "tb_top.uut.counter"; got != want {
		t.Errorf("BasePath() = %q, want %q", got, want)
	}

	if got, want := found.ArraySuffix(), "[3]"; got != want {
		t.Errorf("ArraySuffix() = %q, want %q", got, want)
	}
}

func TestParseNonANSIHeader(t *testing.T) {
	f := mustParse(t, `
module legacy(clk, data);
  input clk;
  output [7:0] data;
endmodule
`)

	m := f.Modules[0]
	if m.ANSIPorts {
		t.Error("expected a non-ANSI port list")
	}

	if len(m.HeaderPortNames) != 2 {
		t.Fatalf("expected 2 header port names, got %d", len(m.HeaderPortNames))
	}
}
