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

// Package orchestrator sequences the full elimination pipeline: elaborate
// (C1), index the hierarchy (C2), detect occurrences (C3), plan (C4),
// rewrite (C5), optionally validate (C6), and write the result. pkg/cmd
// calls Run once per invocation; everything else in this tool is a pure
// function of the Config it builds.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opensv/xmreliminator/pkg/config"
	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/detect"
	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/plan"
	"github.com/opensv/xmreliminator/pkg/rewrite"
	"github.com/opensv/xmreliminator/pkg/source"
	"github.com/opensv/xmreliminator/pkg/sv"
	"github.com/opensv/xmreliminator/pkg/validate"
	"github.com/opensv/xmreliminator/pkg/xerrs"
	log "github.com/sirupsen/logrus"
)

// Result is the Orchestrator's final report: enough to render a
// human-readable summary and to decide the process exit code.
type Result struct {
	DetectedTops   []string
	UsedTop        string
	OutputDir      string
	Eliminated     int
	NoopCount      int
	BySourceModule map[string][]string
	TargetModules  []string
	Warnings       []string
	Errors         []*xerrs.Diagnostic
}

// Success reports whether the run completed with no fatal errors.
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}

// GetSummary renders the run as human-readable text: detected tops, the
// used top, the output directory, counts of eliminated XMRs, the XMR list
// per source module, target modules touched, warnings, and errors.
func (r *Result) GetSummary() string {
	var b strings.Builder
	//
	fmt.Fprintf(&b, "detected top modules: %s\n", joinOrNone(r.DetectedTops))
	fmt.Fprintf(&b, "used top module: %s\n", orNone(r.UsedTop))
	fmt.Fprintf(&b, "output directory: %s\n", r.OutputDir)
	fmt.Fprintf(&b, "XMRs eliminated: %d (no-op: %d)\n", r.Eliminated, r.NoopCount)
	//
	modules := make([]string, 0, len(r.BySourceModule))
	for m := range r.BySourceModule {
		modules = append(modules, m)
	}
	//
	sort.Strings(modules)
	//
	for _, m := range modules {
		fmt.Fprintf(&b, "  %s: %s\n", m, strings.Join(r.BySourceModule[m], ", "))
	}
	//
	if len(r.TargetModules) > 0 {
		fmt.Fprintf(&b, "target modules touched: %s\n", strings.Join(r.TargetModules, ", "))
	}
	//
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	//
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e.Error())
	}
	//
	return b.String()
}

func joinOrNone(ss []string) string {
	if len(ss) == 0 {
		return "(none)"
	}
	//
	return strings.Join(ss, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	//
	return s
}

// Run executes the full pipeline against cfg.
func Run(cfg config.Config) *Result {
	res := &Result{OutputDir: cfg.Output, BySourceModule: map[string][]string{}}
	//
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	//
	if len(cfg.Inputs) == 0 {
		res.Errors = append(res.Errors, xerrs.New(xerrs.InputMissing, "no input files given"))
		return res
	}
	//
	for _, p := range cfg.Inputs {
		if _, err := os.Stat(p); err != nil {
			res.Errors = append(res.Errors, xerrs.New(xerrs.InputMissing, "input file %q does not exist", p))
		}
	}
	//
	if !res.Success() {
		return res
	}
	//
	log.Debugf("elaborating %d input file(s)", len(cfg.Inputs))
	//
	srcs, err := source.ReadFiles(cfg.Inputs...)
	if err != nil {
		res.Errors = append(res.Errors, xerrs.New(xerrs.InputMissing, "%s", err.Error()))
		return res
	}
	//
	d, files, errs := sv.Elaborate(srcs)
	if len(errs) > 0 {
		for _, e := range errs {
			res.Errors = append(res.Errors, xerrs.FromError(e))
		}
		//
		return res
	}
	//
	idx := hier.Build(d)
	res.DetectedTops = idx.TopModules()
	//
	usedTop := cfg.TopModule
	if usedTop == "" {
		if len(res.DetectedTops) == 1 {
			usedTop = res.DetectedTops[0]
		} else {
			res.Warnings = append(res.Warnings,
				"MultipleTopsDetected: no top module specified and the design has zero or multiple candidates")
		}
	}
	//
	res.UsedTop = usedTop
	//
	det := detect.New(d, idx)
	moduleFilter := toSet(cfg.Modules)
	//
	var occs []*detect.Occurrence
	//
	for _, f := range files {
		fileOccs, diags := det.DetectFile(f)
		for _, diag := range diags {
			res.Errors = append(res.Errors, diag)
		}
		//
		for _, o := range fileOccs {
			if len(moduleFilter) > 0 && !moduleFilter[o.SourceModule] {
				continue
			}
			//
			occs = append(occs, o)
		}
	}
	//
	log.Debugf("detected %d candidate XMR occurrence(s)", len(occs))
	//
	if len(occs) == 0 {
		res.Warnings = append(res.Warnings, "NoXmrsFound: no cross-module references detected; emitting inputs unchanged")
		//
		if err := writeOutputs(cfg.Output, withUnchanged(files, nil)); err != nil {
			res.Errors = append(res.Errors, xerrs.New(xerrs.OutputWrite, "%s", err.Error()))
		}
		//
		return res
	}
	//
	if diags := checkClockReset(d, cfg.PipeReg); len(diags) > 0 {
		res.Errors = append(res.Errors, diags...)
		return res
	}
	//
	pl := plan.New(d, idx, cfg.PipeReg)
	//
	cs, diag := pl.Plan(occs)
	if diag != nil {
		res.Errors = append(res.Errors, diag)
		return res
	}
	//
	rw := rewrite.New(files)
	//
	// rw.Apply isolates rewrite failures per source tree: a file that could
	// not be rewritten comes back as an empty string alongside a warning,
	// rather than aborting the whole run, so every other file is still
	// emitted.
	out, rewriteDiags := rw.Apply(cs)
	for _, rd := range rewriteDiags {
		if rd.Severity == xerrs.Fatal {
			res.Errors = append(res.Errors, rd)
		} else {
			res.Warnings = append(res.Warnings, rd.Error())
		}
	}
	//
	if !res.Success() {
		return res
	}
	//
	if cfg.CheckOutput {
		if _, diags := validate.Rewritten(out); len(diags) > 0 {
			res.Errors = append(res.Errors, diags...)
			return res
		}
	}
	//
	if err := writeOutputs(cfg.Output, withUnchanged(files, out)); err != nil {
		res.Errors = append(res.Errors, xerrs.New(xerrs.OutputWrite, "%s", err.Error()))
		return res
	}
	//
	res.Eliminated = len(cs.Replacements)
	res.NoopCount = cs.NoopCount
	targets := make(map[string]bool)
	//
	for _, occ := range occs {
		if occ.SelfReference {
			continue
		}
		//
		res.BySourceModule[occ.SourceModule] = append(res.BySourceModule[occ.SourceModule], occ.CanonicalPath())
		targets[occ.TargetModule] = true
	}
	//
	for m := range targets {
		res.TargetModules = append(res.TargetModules, m)
	}
	//
	sort.Strings(res.TargetModules)
	//
	return res
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	//
	for _, i := range items {
		m[i] = true
	}
	//
	return m
}

// checkClockReset verifies, before any planning happens, that every module
// pipeline registers might land in already declares the configured clock
// (and, if set, reset) signal. Coverage is conservative: for PipeRegGlobal
// and PipeRegPerModule, which can stage any module a route passes through,
// every module in the design is checked; for PipeRegSelective, only the
// modules named in Config.Selective are.
func checkClockReset(d *design.Design, cfg plan.Config) []*xerrs.Diagnostic {
	if cfg.Mode == plan.PipeRegNone {
		return nil
	}
	//
	var modules []string
	//
	switch cfg.Mode {
	case plan.PipeRegSelective:
		for m, n := range cfg.Selective {
			if n > 0 {
				modules = append(modules, m)
			}
		}
	default:
		for name := range d.Modules {
			modules = append(modules, name)
		}
	}
	//
	sort.Strings(modules)
	//
	var diags []*xerrs.Diagnostic
	//
	for _, name := range modules {
		m, ok := d.ModuleByName(name)
		if !ok {
			continue
		}
		//
		if _, _, found := m.ResolveName(cfg.Clock); !found {
			diags = append(diags, xerrs.New(xerrs.MissingClockOrReset,
				"module %q requests pipeline registers but declares no clock signal named %q", name, cfg.Clock))
		}
		//
		if cfg.Reset != "" {
			if _, _, found := m.ResolveName(cfg.Reset); !found {
				diags = append(diags, xerrs.New(xerrs.MissingClockOrReset,
					"module %q requests pipeline registers but declares no reset signal named %q", name, cfg.Reset))
			}
		}
	}
	//
	return diags
}

// withUnchanged folds rewrite.Apply's (possibly nil/partial) output over
// every parsed file's original text, so every input produces exactly one
// output file whether or not it was touched.
func withUnchanged(files []*sv.File, out map[string]string) map[string]string {
	result := make(map[string]string, len(files))
	//
	for k, v := range out {
		result[k] = v
	}
	//
	for _, f := range files {
		name := f.Source.Filename()
		if _, ok := result[name]; !ok {
			result[name] = string(f.Source.Contents())
		}
	}
	//
	return result
}

// writeOutputs writes each file's content into outputDir, wrapped in the
// "//BEGIN:<path>"/"//END:<path>" provenance markers documented for
// downstream de-concatenation tooling.
func writeOutputs(outputDir string, contents map[string]string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	//
	for name, text := range contents {
		full := filepath.Join(outputDir, filepath.Base(name))
		marked := fmt.Sprintf("//BEGIN:%s\n%s\n//END:%s\n", name, text, name)
		//
		if err := os.WriteFile(full, []byte(marked), 0644); err != nil {
			return err
		}
	}
	//
	return nil
}
