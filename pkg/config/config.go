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

// Package config holds the Orchestrator's run configuration, assembled by
// pkg/cmd from CLI flags and environment variables and passed down to every
// other pipeline component untouched.
package config

import (
	"os"
	"strings"

	"github.com/opensv/xmreliminator/pkg/plan"
)

// Config is the complete, resolved configuration for one elimination run.
type Config struct {
	// Inputs holds every input source path, with any ".f" file lists
	// already expanded in place.
	Inputs []string
	// Output is the directory rewritten files are written to.
	Output string
	// Modules restricts XMR detection to these module definitions; empty
	// means every module.
	Modules []string
	// TopModule is the user-chosen top module; empty defers to whatever
	// HierarchyIndex.TopModules reports.
	TopModule string
	// IncludeDirs and Isystem hold the include search directories given on
	// the command line. They are recorded here only: the frontend has no
	// include resolver and never reads them.
	IncludeDirs []string
	Isystem     []string
	// Defines and Undefines hold the macro definitions given on the command
	// line. They are recorded here only: the frontend has no preprocessor
	// and never reads them.
	Defines   []string
	Undefines []string
	// PipeReg carries the planner's pipeline-register configuration
	// verbatim.
	PipeReg plan.Config
	// CheckOutput enables the Validator (C6).
	CheckOutput bool
	Verbose     bool
}

// Default returns a Config with every documented CLI default applied.
func Default() Config {
	return Config{
		Output: ".xmrEliminate",
		PipeReg: plan.Config{
			Mode:            plan.PipeRegNone,
			Clock:           "clk",
			Reset:           "rst_n",
			ResetActiveHigh: false,
		},
	}
}

// ApplyEnvironment folds documented environment-variable overrides into cfg:
// CHECK_OUTPUT set to "1" or "true" turns CheckOutput on; any other value
// leaves it as the flags set it.
func (cfg *Config) ApplyEnvironment() {
	if v, ok := os.LookupEnv("CHECK_OUTPUT"); ok {
		cfg.CheckOutput = cfg.CheckOutput || v == "1" || strings.EqualFold(v, "true")
	}
}

// ParsePipeRegMode maps the CLI's --pipe-reg-mode string onto a
// plan.PipeRegMode, defaulting to PipeRegNone for an unrecognised value.
func ParsePipeRegMode(s string) plan.PipeRegMode {
	switch strings.ToLower(s) {
	case "global":
		return plan.PipeRegGlobal
	case "permodule":
		return plan.PipeRegPerModule
	case "selective":
		return plan.PipeRegSelective
	default:
		return plan.PipeRegNone
	}
}

// ParseSelective parses the selective pipeline-register CSV form
// "module=count[,module=count]..." used when --pipe-reg-mode=selective.
func ParseSelective(csv string) map[string]int {
	if csv == "" {
		return nil
	}
	//
	out := make(map[string]int)
	//
	for _, entry := range strings.Split(csv, ",") {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			continue
		}
		//
		n := 0
		//
		for _, r := range strings.TrimSpace(kv[1]) {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			//
			n = n*10 + int(r-'0')
		}
		//
		out[strings.TrimSpace(kv[0])] = n
	}
	//
	return out
}
