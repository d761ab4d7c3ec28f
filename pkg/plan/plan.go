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

// Package plan implements change planning: turning a set of resolved XMR
// occurrences into a concrete ChangeSet of new ports, new instantiation
// connections, new internal wiring and (optionally) pipeline register
// stages, which pkg/rewrite then splices into the original source text.
//
// The core idea is to treat every occurrence's source and target as two
// leaves of the same elaborated instance tree and find their lowest common
// ancestor (LCA). The segment of the route from the target up to the LCA
// becomes a chain of new *output* ports (the value is exposed upward, one
// level at a time); the segment from the LCA down to the source becomes a
// chain of new *input* ports (the value is threaded downward). This single
// construction handles the three cases spec.md describes separately —
// downward reference (LCA == source), upward reference (LCA == target) and
// an arbitrary absolute reference between unrelated branches — uniformly.
package plan

import (
	"fmt"

	"github.com/opensv/xmreliminator/pkg/design"
	"github.com/opensv/xmreliminator/pkg/detect"
	"github.com/opensv/xmreliminator/pkg/hier"
	"github.com/opensv/xmreliminator/pkg/util"
	"github.com/opensv/xmreliminator/pkg/xerrs"
)

// PipeRegMode selects how pipeline registers are inserted along threaded
// routes, if at all.
type PipeRegMode uint

// Recognised pipeline register modes.
const (
	// PipeRegNone inserts no pipeline registers; every threaded port is a
	// pure combinational pass-through.
	PipeRegNone PipeRegMode = iota
	// PipeRegGlobal inserts Config.GlobalCount stages at every staging
	// point on a route (each new port or landing wire in a module that
	// declares the clock port). The count is not divided among those
	// points, and staging is not confined to the target module.
	PipeRegGlobal
	// PipeRegPerModule inserts the same fixed stage count in every module
	// a route passes through.
	PipeRegPerModule
	// PipeRegSelective inserts a stage count only in modules explicitly
	// named in Config.Selective.
	PipeRegSelective
)

// Config carries the planner's tunable behaviour, set from CLI flags.
type Config struct {
	Mode            PipeRegMode
	GlobalCount     int
	PerModuleCount  int
	Selective       map[string]int
	Clock           string
	Reset           string
	ResetActiveHigh bool
}

// PortAddition is a new port to be added to a module's header/body.
type PortAddition struct {
	Module    string
	Name      string
	Direction design.Direction
	Width     uint
}

// ConnectionAddition is a new named connection to add to a specific
// instantiation statement.
type ConnectionAddition struct {
	// AtModule is the module whose text contains the instantiation.
	AtModule     string
	InstanceName string
	PortName     string
	// Actual is the local signal/port name in AtModule driving or
	// receiving the connection.
	Actual string
}

// AssignAddition is a new continuous-assignment statement's text to append
// to a module's body (used to expose an internal signal as a new output
// port, and for combinational pass-through when no pipeline stages are
// requested).
type AssignAddition struct {
	Module string
	Text   string
}

// RegBlockAddition is a new always_ff pipeline-register block's text to
// append to a module's body, together with the stage-register declarations
// it depends on.
type RegBlockAddition struct {
	Module string
	Text   string
}

// WireAddition is a new internal net to declare in a module's body. Used for
// the "raw landing wire" a staged output port connects to, since the port
// itself cannot simultaneously receive a child's connection and be driven by
// that same module's own register chain.
type WireAddition struct {
	Module string
	Name   string
	Width  uint
}

// Replacement records that a specific occurrence's textual span should be
// replaced with NewText (a plain local identifier, plus any original array
// suffix).
type Replacement struct {
	Occurrence *detect.Occurrence
	NewText    string
}

// ChangeSet is the complete, ready-to-apply output of planning.
type ChangeSet struct {
	Ports        []PortAddition
	Connections  []ConnectionAddition
	Assigns      []AssignAddition
	RegBlocks    []RegBlockAddition
	Wires        []WireAddition
	Replacements []Replacement
	// NoopCount counts self-referencing occurrences that required no
	// change, reported in the run summary.
	NoopCount int
}

// Planner builds a ChangeSet from a design's resolved occurrences.
type Planner struct {
	design *design.Design
	index  *hier.Index
	cfg    Config

	seenPorts map[string]bool
	seenConns map[string]bool
	seenLeaf  map[string]bool
	seenWires map[string]bool
}

// New constructs a Planner.
func New(d *design.Design, idx *hier.Index, cfg Config) *Planner {
	return &Planner{
		design:    d,
		index:     idx,
		cfg:       cfg,
		seenPorts: make(map[string]bool),
		seenConns: make(map[string]bool),
		seenLeaf:  make(map[string]bool),
		seenWires: make(map[string]bool),
	}
}

// Plan resolves every occurrence's route and accumulates a ChangeSet. It
// returns a fatal diagnostic if two occurrences sharing the same canonical
// path disagree on direction (spec.md's MixedDirectionXmr decision for its
// mixed-read/write Open Question), or if an occurrence's route cannot be
// resolved in the hierarchy index. A module without the clock port is not
// an error here: it is left unstaged (see clockAvailable).
func (pl *Planner) Plan(occs []*detect.Occurrence) (*ChangeSet, *xerrs.Diagnostic) {
	cs := &ChangeSet{}
	directionOf := make(map[string]design.Direction)
	//
	for _, occ := range occs {
		canon := pl.canonicalName(occ)
		//
		if prev, ok := directionOf[canon]; ok && prev != occ.Direction {
			return nil, xerrs.New(xerrs.MixedDirectionXmr,
				"path %q is referenced as both a read and a write; this implementation requires a single direction per path", canon)
		}
		//
		directionOf[canon] = occ.Direction
	}
	//
	for _, occ := range occs {
		if occ.SelfReference {
			cs.NoopCount++
			continue
		}
		//
		if err := pl.planOne(occ, cs); err != nil {
			return nil, err
		}
	}
	//
	return cs, nil
}

// canonicalName derives the single globally-shared port/wire name used at
// every hop of an occurrence's route, built from the fully resolved
// absolute path to the target signal so that two occurrences reaching the
// same physical signal by different relative routes still share one name.
func (pl *Planner) canonicalName(occ *detect.Occurrence) string {
	abs := pl.absoluteTargetPath(occ)
	full := abs.Extend(occ.TargetSignal)
	//
	return "__xmr__" + full.Slug()
}

func (pl *Planner) absoluteSourcePath(sourceModule string) (util.Path, *xerrs.Diagnostic) {
	if pl.isTop(sourceModule) {
		return util.NewAbsolutePath(sourceModule), nil
	}
	//
	paths := pl.index.PathsTo(sourceModule)
	if len(paths) == 0 {
		return util.Path{}, xerrs.New(xerrs.FrontendCompile,
			"module %q is never instantiated anywhere in the design", sourceModule)
	}
	// Simplification: when a module is instantiated more than once, XMR
	// elimination is performed relative to its first discovered
	// instantiation site.
	return paths[0], nil
}

func (pl *Planner) absoluteTargetPath(occ *detect.Occurrence) util.Path {
	if occ.Absolute {
		return occ.InstancePath
	}
	//
	srcAbs, diag := pl.absoluteSourcePath(occ.SourceModule)
	if diag != nil {
		// Caller already validated reachability when resolving the
		// occurrence; this should not happen in practice.
		return occ.InstancePath
	}
	//
	result := srcAbs
	//
	for _, seg := range occ.InstancePath.Segments() {
		result = *result.Extend(seg)
	}
	//
	return result
}

func (pl *Planner) isTop(name string) bool {
	for _, t := range pl.index.TopModules() {
		if t == name {
			return true
		}
	}
	//
	return false
}

func (pl *Planner) planOne(occ *detect.Occurrence, cs *ChangeSet) *xerrs.Diagnostic {
	canon := pl.canonicalName(occ)
	targetAbs := pl.absoluteTargetPath(occ)
	//
	sourceAbs, diag := pl.absoluteSourcePath(occ.SourceModule)
	if diag != nil {
		return diag
	}
	//
	lca := commonPrefixLen(targetAbs.Segments(), sourceAbs.Segments())
	//
	if lca == 0 {
		return xerrs.New(xerrs.UnknownChildInstance,
			"%q and %q share no common ancestor in the design hierarchy", targetAbs.String(), sourceAbs.String())
	}
	//
	targetNode, ok := pl.index.NodeAt(targetAbs)
	if !ok {
		return xerrs.New(xerrs.UnknownChildInstance, "path %q does not resolve to an instance", targetAbs.String())
	}
	//
	// Leaf: the target module gets a new output port named canon plus an
	// internal assign driving it from the target signal, whether that
	// signal is an internal one or already a port.
	leafKey := occ.TargetModule + "|" + canon
	//
	if !pl.seenLeaf[leafKey] {
		pl.seenLeaf[leafKey] = true
		pl.addPort(cs, occ.TargetModule, canon, design.Output, occ.BitWidth)
		cs.Assigns = append(cs.Assigns, AssignAddition{
			Module: occ.TargetModule,
			Text:   fmt.Sprintf("assign %s = %s;", canon, occ.TargetSignal),
		})
	}
	//
	// Up leg: walk from targetNode towards the root one level at a time
	// until reaching the LCA's depth. Every intermediate hop's parent gets
	// a new output port named canon (possibly pipelined internally) fed by
	// a new connection to its child's own canon port, since the value must
	// keep crossing an instance boundary on its way up. addStagedOutputPort
	// reports which local wire the connection should actually land on:
	// canon itself for a pure pass-through (a module's own output port
	// doubles as the net), or a dedicated raw landing wire when a register
	// stage sits between the connection and the port.
	//
	// The final hop — the node whose parent sits exactly at the LCA depth —
	// is different: nothing above the LCA ever references canon, so the LCA
	// only needs a plain internal wire, not a port on its own interface. For
	// a pure downward reference the LCA is the source module itself, which
	// is exactly the "top holds only the wire" shape the eliminator targets.
	for node := targetNode; len(pathOf(node).Segments()) > lca; node = node.Parent {
		parent := node.Parent
		parentPath := pathOf(parent)
		parentModule := moduleNameOf(parent)
		atLCA := len(parentPath.Segments()) == lca
		//
		wireKey := parentModule + "|" + canon
		landing := canon
		//
		if atLCA {
			if !pl.seenWires[wireKey] && !pl.seenPorts[wireKey] {
				pl.seenWires[wireKey] = true
				landing = pl.addStagedWire(cs, parentModule, canon, occ.BitWidth)
			}
		} else if !pl.seenPorts[wireKey] {
			landing = pl.addStagedOutputPort(cs, parentModule, canon, occ.BitWidth)
		}
		//
		connKey := parentPath.String() + "|" + node.InstanceName + "|" + canon
		//
		if !pl.seenConns[connKey] {
			pl.seenConns[connKey] = true
			cs.Connections = append(cs.Connections, ConnectionAddition{
				AtModule:     parentModule,
				InstanceName: node.InstanceName,
				PortName:     canon,
				Actual:       landing,
			})
		}
	}
	//
	// Down leg: from the LCA (depth == lca, always >= 1, so always a real
	// node in the tree) down to sourceAbs, threading a new input port at
	// each child wired from the value available at its parent. forward
	// tracks the expression naming "the canon value, as seen by whichever
	// module is about to connect it one level further down": canon itself
	// at the LCA (its own net/output port), or a register-array element
	// when the previous hop pipelined it.
	sourceSegs := sourceAbs.Segments()
	forward := canon
	//
	for depth := lca; depth < len(sourceSegs); depth++ {
		parentPath := util.NewAbsolutePath(sourceSegs[:depth]...)
		childPath := util.NewAbsolutePath(sourceSegs[:depth+1]...)
		//
		parentNode, ok := pl.index.NodeAt(parentPath)
		if !ok {
			return xerrs.New(xerrs.UnknownChildInstance, "path %q does not resolve to an instance", parentPath.String())
		}
		//
		childNode, ok := pl.index.NodeAt(childPath)
		if !ok {
			return xerrs.New(xerrs.UnknownChildInstance, "path %q does not resolve to an instance", childPath.String())
		}
		//
		parentModule := moduleNameOf(parentNode)
		childModule := moduleNameOf(childNode)
		//
		connKey := parentPath.String() + "|" + childNode.InstanceName + "|" + canon
		//
		if !pl.seenConns[connKey] {
			pl.seenConns[connKey] = true
			cs.Connections = append(cs.Connections, ConnectionAddition{
				AtModule:     parentModule,
				InstanceName: childNode.InstanceName,
				PortName:     canon,
				Actual:       forward,
			})
		}
		//
		portKey := childModule + "|" + canon
		//
		if !pl.seenPorts[portKey] {
			forward = pl.addStagedInputPort(cs, childModule, canon, occ.BitWidth)
		} else {
			forward = canon
		}
	}
	//
	cs.Replacements = append(cs.Replacements, Replacement{Occurrence: occ, NewText: canon + occ.Array})
	//
	return nil
}

// addPort registers a port addition exactly once per (module, port) pair.
func (pl *Planner) addPort(cs *ChangeSet, module, name string, dir design.Direction, width uint) {
	key := module + "|" + name
	//
	if pl.seenPorts[key] {
		return
	}
	//
	pl.seenPorts[key] = true
	cs.Ports = append(cs.Ports, PortAddition{Module: module, Name: name, Direction: dir, Width: width})
}

// addStagedOutputPort registers a new output port named name on module and,
// if a pipeline-register stage count applies there, a register chain feeding
// it from a dedicated raw landing wire rather than from the port itself.
// Returns the local net an incoming connection at the next hop up should
// actually land on: name for a plain pass-through, or the raw landing wire
// when staged.
func (pl *Planner) addStagedOutputPort(cs *ChangeSet, module, name string, width uint) string {
	pl.addPort(cs, module, name, design.Output, width)
	//
	stages := pl.stageCountFor(module)
	if stages <= 0 || !pl.clockAvailable(module) {
		return name
	}
	//
	raw := name + "_raw"
	cs.Wires = append(cs.Wires, WireAddition{Module: module, Name: raw, Width: width})
	//
	text, finalExpr := pl.regChainText(raw, name, width, stages)
	text += fmt.Sprintf("\nassign %s = %s;", name, finalExpr)
	cs.RegBlocks = append(cs.RegBlocks, RegBlockAddition{Module: module, Text: text})
	//
	return raw
}

// addStagedWire registers a new internal wire named name on module — the
// landing net at the top of an up-leg route, used in place of a port once
// the route reaches its lowest common ancestor — and, if a pipeline-register
// stage count applies there, a register chain feeding it from a dedicated
// raw landing wire. Returns the local net an incoming connection from the
// child below should actually land on, with the same contract as
// addStagedOutputPort.
func (pl *Planner) addStagedWire(cs *ChangeSet, module, name string, width uint) string {
	cs.Wires = append(cs.Wires, WireAddition{Module: module, Name: name, Width: width})
	//
	stages := pl.stageCountFor(module)
	if stages <= 0 || !pl.clockAvailable(module) {
		return name
	}
	//
	raw := name + "_raw"
	cs.Wires = append(cs.Wires, WireAddition{Module: module, Name: raw, Width: width})
	//
	text, finalExpr := pl.regChainText(raw, name, width, stages)
	text += fmt.Sprintf("\nassign %s = %s;", name, finalExpr)
	cs.RegBlocks = append(cs.RegBlocks, RegBlockAddition{Module: module, Text: text})
	//
	return raw
}

// addStagedInputPort registers a new input port named name on module and, if
// a pipeline-register stage count applies there, a register chain fed
// directly from the port. Returns the expression the rest of this module's
// body should use in place of name: name itself for a plain pass-through, or
// the final pipeline stage's expression when staged.
func (pl *Planner) addStagedInputPort(cs *ChangeSet, module, name string, width uint) string {
	pl.addPort(cs, module, name, design.Input, width)
	//
	stages := pl.stageCountFor(module)
	if stages <= 0 || !pl.clockAvailable(module) {
		return name
	}
	//
	text, finalExpr := pl.regChainText(name, name, width, stages)
	cs.RegBlocks = append(cs.RegBlocks, RegBlockAddition{Module: module, Text: text})
	//
	return finalExpr
}

// clockAvailable reports whether module declares the configured clock port,
// a prerequisite for inserting any pipeline register there. A module lacking
// it silently falls back to an unstaged pass-through rather than erroring,
// since most routes pass through modules that have no business owning a
// clock (e.g. pure address-decode glue).
func (pl *Planner) clockAvailable(module string) bool {
	if pl.cfg.Clock == "" {
		return false
	}
	//
	m, ok := pl.design.ModuleByName(module)
	if !ok {
		return false
	}
	//
	_, ok = m.PortByName(pl.cfg.Clock)
	//
	return ok
}

func (pl *Planner) stageCountFor(module string) int {
	switch pl.cfg.Mode {
	case PipeRegGlobal:
		return pl.cfg.GlobalCount
	case PipeRegPerModule:
		return pl.cfg.PerModuleCount
	case PipeRegSelective:
		return pl.cfg.Selective[module]
	default:
		return 0
	}
}

// regChainText builds the declaration and always_ff body for a stages-deep
// shift register named regBase_q, clocked per Config, sampling inputExpr on
// its first stage. Returns the block's text (sans any trailing assign the
// caller may append) and the expression naming its final stage's value.
func (pl *Planner) regChainText(inputExpr, regBase string, width uint, stages int) (text string, finalExpr string) {
	hi := intMax(width, 1) - 1
	reg := fmt.Sprintf("reg [%d:0] %s_q [0:%d];", hi, regBase, stages-1)
	//
	sens := "posedge " + pl.cfg.Clock
	if pl.cfg.Reset != "" {
		edge := "negedge"
		if pl.cfg.ResetActiveHigh {
			edge = "posedge"
		}
		sens += " or " + edge + " " + pl.cfg.Reset
	}
	//
	var body string
	//
	if pl.cfg.Reset != "" {
		cond := pl.cfg.Reset
		if !pl.cfg.ResetActiveHigh {
			cond = "!" + pl.cfg.Reset
		}
		//
		body += fmt.Sprintf("if (%s) begin\n", cond)
		//
		for i := 0; i < stages; i++ {
			body += fmt.Sprintf("%s_q[%d] <= '0;\n", regBase, i)
		}
		//
		body += "end else begin\n"
	}
	//
	body += fmt.Sprintf("%s_q[0] <= %s;\n", regBase, inputExpr)
	//
	for i := 1; i < stages; i++ {
		body += fmt.Sprintf("%s_q[%d] <= %s_q[%d];\n", regBase, i, regBase, i-1)
	}
	//
	if pl.cfg.Reset != "" {
		body += "end\n"
	}
	//
	text = fmt.Sprintf("%s\nalways_ff @(%s) begin\n%send", reg, sens, body)
	finalExpr = fmt.Sprintf("%s_q[%d]", regBase, stages-1)
	//
	return text, finalExpr
}

func intMax(w uint, min int) int {
	if int(w) > min {
		return int(w)
	}
	//
	return min
}

func commonPrefixLen(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	//
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	//
	return n
}

func pathOf(n *design.InstanceNode) util.Path {
	var segs []string
	//
	for c := n; c != nil; c = c.Parent {
		segs = append([]string{c.InstanceName}, segs...)
	}
	//
	return util.NewAbsolutePath(segs...)
}

func moduleNameOf(n *design.InstanceNode) string {
	if n.Definition == nil {
		return ""
	}
	//
	return n.Definition.Name
}
