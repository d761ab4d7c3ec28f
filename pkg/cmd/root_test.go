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
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opensv/xmreliminator/pkg/plan"
)

func TestExpandInputsPassesThroughPlainFiles(t *testing.T) {
	got := expandInputs([]string{"a.sv", "b.sv"})

	if len(got) != 2 || got[0] != "a.sv" || got[1] != "b.sv" {
		t.Errorf("expandInputs() = %v, want [a.sv b.sv]", got)
	}
}

func TestExpandInputsExpandsFileList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "files.f")

	contents := "a.sv\n// a comment\n\nb.sv\n"
	if err := os.WriteFile(listPath, []byte(contents), 0644); err != nil {
		t.Fatalf("writing file list: %v", err)
	}

	got := expandInputs([]string{listPath, "c.sv"})

	want := []string{"a.sv", "b.sv", "c.sv"}
	if len(got) != len(want) {
		t.Fatalf("expandInputs() = %v, want %v", got, want)
	}

	for i, w := range want {
		if got[i] != w {
			t.Errorf("expandInputs()[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestBuildConfigReadsFlagsAndArgs(t *testing.T) {
	if err := rootCmd.ParseFlags([]string{
		"--output", "out",
		"--top", "tb_top",
		"--pipe-reg-mode", "global",
		"--pipe-reg-count", "3",
		"--co",
		"design.sv",
	}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := buildConfig(rootCmd, []string{"design.sv"})

	if cfg.Output != "out" {
		t.Errorf("Output = %q, want out", cfg.Output)
	}

	if cfg.TopModule != "tb_top" {
		t.Errorf("TopModule = %q, want tb_top", cfg.TopModule)
	}

	if cfg.PipeReg.Mode != plan.PipeRegGlobal || cfg.PipeReg.GlobalCount != 3 {
		t.Errorf("unexpected PipeReg: %+v", cfg.PipeReg)
	}

	if !cfg.CheckOutput {
		t.Error("--co should set CheckOutput")
	}

	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "design.sv" {
		t.Errorf("Inputs = %v, want [design.sv]", cfg.Inputs)
	}
}
