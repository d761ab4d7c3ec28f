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

// Package validate implements the validator: re-running the frontend over
// rewritten source text to confirm it still parses and elaborates cleanly.
// No repair is attempted here — a failure at this stage means the rewriter
// produced invalid SystemVerilog, which is always a defect in this tool
// rather than something the input design's author could fix.
package validate

import (
	"github.com/opensv/xmreliminator/pkg/source"
	"github.com/opensv/xmreliminator/pkg/sv"
	"github.com/opensv/xmreliminator/pkg/xerrs"
)

// Result summarises a successful re-elaboration of rewritten text.
type Result struct {
	ModuleCount int
}

// Rewritten re-parses and re-elaborates a set of rewritten files, keyed by
// filename as produced by pkg/rewrite.Apply. On success it reports how many
// modules were found, purely for the run summary; it carries no information
// the caller needs to act on.
func Rewritten(files map[string]string) (*Result, []*xerrs.Diagnostic) {
	srcs := make([]source.File, 0, len(files))
	//
	for name, text := range files {
		srcs = append(srcs, *source.NewFile(name, []byte(text)))
	}
	//
	d, _, errs := sv.Elaborate(srcs)
	if len(errs) > 0 {
		diags := make([]*xerrs.Diagnostic, len(errs))
		//
		for i, err := range errs {
			diags[i] = xerrs.FromError(err)
		}
		//
		return nil, diags
	}
	//
	return &Result{ModuleCount: len(d.Modules)}, nil
}
