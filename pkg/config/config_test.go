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
package config

import (
	"testing"

	"github.com/opensv/xmreliminator/pkg/plan"
)

func TestDefaultAppliesDocumentedDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Output != ".xmrEliminate" {
		t.Errorf("Output = %q, want .xmrEliminate", cfg.Output)
	}

	if cfg.PipeReg.Mode != plan.PipeRegNone {
		t.Errorf("PipeReg.Mode = %v, want PipeRegNone", cfg.PipeReg.Mode)
	}

	if cfg.PipeReg.Clock != "clk" || cfg.PipeReg.Reset != "rst_n" {
		t.Errorf("unexpected default clock/reset: %+v", cfg.PipeReg)
	}
}

func TestApplyEnvironmentOverridesCheckOutput(t *testing.T) {
	t.Setenv("CHECK_OUTPUT", "true")

	cfg := Default()
	cfg.ApplyEnvironment()

	if !cfg.CheckOutput {
		t.Error("CHECK_OUTPUT=true should enable CheckOutput")
	}
}

func TestParsePipeRegMode(t *testing.T) {
	cases := map[string]plan.PipeRegMode{
		"global":     plan.PipeRegGlobal,
		"PerModule":  plan.PipeRegPerModule,
		"selective":  plan.PipeRegSelective,
		"nonsense":   plan.PipeRegNone,
		"":           plan.PipeRegNone,
	}

	for in, want := range cases {
		if got := ParsePipeRegMode(in); got != want {
			t.Errorf("ParsePipeRegMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseSelective(t *testing.T) {
	got := ParseSelective("sub=2, top = 1,malformed")

	want := map[string]int{"sub": 2, "top": 1}

	if len(got) != len(want) {
		t.Fatalf("ParseSelective() = %v, want %v", got, want)
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("ParseSelective()[%q] = %d, want %d", k, got[k], v)
		}
	}
}
