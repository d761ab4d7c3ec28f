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

// Package rewrite implements the syntax rewriter: splicing a plan.ChangeSet
// back into the original parsed source text. Rather than re-printing a
// syntax tree, it collects a flat list of (span, replacement text) edits
// anchored to the zero-length insertion-point spans pkg/sv's parser already
// recorded on every ModuleDecl/Instantiation, plus the real spans of
// replaced HierName occurrences, and applies them in a single left-to-right
// pass over each file's original rune contents.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opensv/xmreliminator/pkg/plan"
	"github.com/opensv/xmreliminator/pkg/source"
	"github.com/opensv/xmreliminator/pkg/sv"
	"github.com/opensv/xmreliminator/pkg/xerrs"
)

// edit is a single splice against one file's original rune contents: the
// runes in [start,end) are replaced with text. Insertion points use a
// zero-length [pos,pos) span.
type edit struct {
	start, end int
	text       string
}

// Rewriter applies change sets against a fixed set of already-parsed files.
type Rewriter struct {
	files    []*sv.File
	byModule map[string]*sv.ModuleDecl
	fileOf   map[string]*sv.File
}

// New indexes every module declared across files by name, so planned
// changes (which name modules, not files) can find their target span.
func New(files []*sv.File) *Rewriter {
	r := &Rewriter{
		files:    files,
		byModule: make(map[string]*sv.ModuleDecl),
		fileOf:   make(map[string]*sv.File),
	}
	//
	for _, f := range files {
		for _, m := range f.Modules {
			r.byModule[m.Name.Text] = m
			r.fileOf[m.Name.Text] = f
		}
	}
	//
	return r
}

// Apply splices every change in cs into its owning file's text, returning
// the rewritten contents keyed by source filename. Only files touched by at
// least one change are present in the result.
//
// Failures are isolated per source tree rather than aborting the whole run:
// a change naming a module this Rewriter never parsed is dropped (it cannot
// be attributed to any file, so nothing is blanked) and recorded as a
// warning; a file whose edits turn out to conflict (e.g. two planned edits
// overlapping) has its entire output replaced with an empty string, also as
// a warning, while every other file's edits are still applied and returned.
func (r *Rewriter) Apply(cs *plan.ChangeSet) (map[string]string, []*xerrs.Diagnostic) {
	editsByFile := make(map[*sv.File][]edit)
	var diags []*xerrs.Diagnostic
	//
	addEdit := func(module string, span source.Span, text string) {
		f, ok := r.fileOf[module]
		if !ok {
			diags = append(diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", module))
			//
			return
		}
		//
		editsByFile[f] = append(editsByFile[f], edit{span.Start(), span.End(), text})
	}
	//
	r.applyPorts(cs, addEdit, &diags)
	r.applyWires(cs, addEdit, &diags)
	//
	for _, a := range cs.Assigns {
		m, ok := r.byModule[a.Module]
		if !ok {
			diags = append(diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", a.Module))
			//
			continue
		}
		//
		addEdit(a.Module, m.BodyEndSpan_, a.Text+"\n")
	}
	//
	for _, rb := range cs.RegBlocks {
		m, ok := r.byModule[rb.Module]
		if !ok {
			diags = append(diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", rb.Module))
			//
			continue
		}
		//
		addEdit(rb.Module, m.BodyEndSpan_, rb.Text+"\n")
	}
	//
	r.applyConnections(cs, addEdit, &diags)
	//
	for _, rep := range cs.Replacements {
		f, ok := r.fileOf[rep.Occurrence.SourceModule]
		if !ok {
			diags = append(diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned replacement was never parsed; the replacement was dropped",
				rep.Occurrence.SourceModule))
			//
			continue
		}
		//
		span := rep.Occurrence.Node.Span()
		editsByFile[f] = append(editsByFile[f], edit{span.Start(), span.End(), rep.NewText})
	}
	//
	out := make(map[string]string, len(editsByFile))
	//
	for f, edits := range editsByFile {
		text, diag := splice(f, edits)
		if diag != nil {
			diags = append(diags, xerrs.Warningf(xerrs.RewriteFailure,
				"%s: %s; this file's output is replaced with an empty string", f.Source.Filename(), diag.Message))
			out[f.Source.Filename()] = ""
			//
			continue
		}
		//
		out[f.Source.Filename()] = text
	}
	//
	return out, diags
}

// applyPorts groups port additions by module and emits, per module, a single
// insertion at the port list's closing-paren insertion point (plus, for a
// non-ANSI or absent port list, a matching insertion of direction
// declarations at the top of the body, since an ANSI entry cannot be mixed
// into a non-ANSI list). A module named in cs.Ports but never parsed has its
// change dropped and recorded as a warning; every other module is still
// processed.
func (r *Rewriter) applyPorts(cs *plan.ChangeSet, addEdit func(string, source.Span, string), diags *[]*xerrs.Diagnostic) {
	order, byModule := groupPorts(cs.Ports)
	//
	for _, module := range order {
		m, ok := r.byModule[module]
		if !ok {
			*diags = append(*diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", module))
			//
			continue
		}
		//
		ports := byModule[module]
		existingEntries := len(m.Ports)
		//
		if !m.ANSIPorts {
			existingEntries = len(m.HeaderPortNames)
		}
		//
		var list, body strings.Builder
		//
		for i, p := range ports {
			if existingEntries > 0 || i > 0 {
				list.WriteString(", ")
			}
			//
			if m.ANSIPorts {
				list.WriteString(p.Direction.String() + " wire " + widthText(p.Width) + p.Name)
			} else {
				list.WriteString(p.Name)
				body.WriteString(p.Direction.String() + " wire " + widthText(p.Width) + p.Name + ";\n")
			}
		}
		//
		listText := list.String()
		if !m.HasPortList {
			listText = "(" + listText + ")"
		}
		//
		addEdit(module, m.PortListEndSpan_, listText)
		//
		if body.Len() > 0 {
			addEdit(module, m.BodyStartSpan_, body.String())
		}
	}
}

func groupPorts(ports []plan.PortAddition) ([]string, map[string][]plan.PortAddition) {
	var order []string
	byModule := make(map[string][]plan.PortAddition)
	//
	for _, p := range ports {
		if _, ok := byModule[p.Module]; !ok {
			order = append(order, p.Module)
		}
		//
		byModule[p.Module] = append(byModule[p.Module], p)
	}
	//
	return order, byModule
}

// applyWires inserts new internal wire declarations at the top of each
// module's body, skipping any whose name was also added as a port in the
// same module (per spec.md's rule that a wire promoted to a port is declared
// only once, as the port). A module never parsed has its wire dropped and
// recorded as a warning; every other module is still processed.
func (r *Rewriter) applyWires(cs *plan.ChangeSet, addEdit func(string, source.Span, string), diags *[]*xerrs.Diagnostic) {
	addedPort := make(map[string]bool, len(cs.Ports))
	//
	for _, p := range cs.Ports {
		addedPort[p.Module+"|"+p.Name] = true
	}
	//
	for _, w := range cs.Wires {
		if addedPort[w.Module+"|"+w.Name] {
			continue
		}
		//
		m, ok := r.byModule[w.Module]
		if !ok {
			*diags = append(*diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", w.Module))
			//
			continue
		}
		//
		text := "wire " + widthText(w.Width) + w.Name + ";\n"
		addEdit(w.Module, m.BodyStartSpan_, text)
	}
}

// applyConnections groups connection additions by (module, instance) and
// emits, per instantiation, a single insertion at its connection list's
// closing-paren insertion point. An instantiation that cannot be resolved
// (module never parsed, or instance not found within it) has its connection
// changes dropped and recorded as a warning; every other instantiation is
// still processed.
func (r *Rewriter) applyConnections(cs *plan.ChangeSet, addEdit func(string, source.Span, string), diags *[]*xerrs.Diagnostic) {
	type key struct{ module, instance string }
	//
	var order []key
	grouped := make(map[key][]plan.ConnectionAddition)
	//
	for _, c := range cs.Connections {
		k := key{c.AtModule, c.InstanceName}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		//
		grouped[k] = append(grouped[k], c)
	}
	//
	for _, k := range order {
		m, ok := r.byModule[k.module]
		if !ok {
			*diags = append(*diags, xerrs.Warningf(xerrs.RewriteFailure,
				"module %q named in a planned change was never parsed; the change was dropped", k.module))
			//
			continue
		}
		//
		inst := findInstantiation(m, k.instance)
		if inst == nil {
			*diags = append(*diags, xerrs.Warningf(xerrs.RewriteFailure,
				"instance %q not found in module %q; the change was dropped", k.instance, k.module))
			//
			continue
		}
		//
		var b strings.Builder
		//
		for i, c := range grouped[k] {
			if inst.HasConnections || i > 0 {
				b.WriteString(", ")
			}
			//
			fmt.Fprintf(&b, ".%s(%s)", c.PortName, c.Actual)
		}
		//
		addEdit(k.module, inst.ConnListEndSpan_, b.String())
	}
}

func findInstantiation(m *sv.ModuleDecl, instanceName string) *sv.Instantiation {
	for _, it := range m.Items {
		if inst, ok := it.(*sv.Instantiation); ok && inst.InstanceName == instanceName {
			return inst
		}
	}
	//
	return nil
}

func widthText(w uint) string {
	if w <= 1 {
		return ""
	}
	//
	return fmt.Sprintf("[%d:0] ", w-1)
}

// splice applies a set of non-overlapping edits to f's original contents in
// a single left-to-right pass, sorted by start offset (ties preserve the
// order edits were appended in, so e.g. a module's generated assigns always
// precede its pipeline register blocks at a shared BodyEndSpan_ insertion
// point).
func splice(f *sv.File, edits []edit) (string, *xerrs.Diagnostic) {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	//
	contents := f.Source.Contents()
	//
	var b strings.Builder
	cursor := 0
	//
	for _, e := range edits {
		if e.start < cursor {
			return "", xerrs.New(xerrs.RewriteFailure,
				"%s: two planned edits overlap at offset %d", f.Source.Filename(), e.start)
		}
		//
		b.WriteString(string(contents[cursor:e.start]))
		b.WriteString(e.text)
		cursor = e.end
	}
	//
	b.WriteString(string(contents[cursor:]))
	//
	return b.String(), nil
}
