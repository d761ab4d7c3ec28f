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

// Package xerrs defines the diagnostic vocabulary shared by every pipeline
// component: a closed set of error kinds, and a Diagnostic type that pairs a
// kind and message with an optional source location, modelled on
// pkg/source.SyntaxError.
package xerrs

import (
	"fmt"

	"github.com/opensv/xmreliminator/pkg/source"
)

// Kind identifies which pipeline stage and condition produced a diagnostic.
type Kind uint

// Recognised diagnostic kinds.
const (
	// InputMissing indicates a named input file or module could not be
	// found.
	InputMissing Kind = iota
	// FrontendSyntax indicates the SystemVerilog frontend could not
	// tokenise or parse an input file.
	FrontendSyntax
	// FrontendCompile indicates the frontend parsed an input file but
	// elaboration failed (e.g. an instantiated module was never declared,
	// or no top-level module could be identified).
	FrontendCompile
	// UnknownChildInstance indicates a hierarchical reference names an
	// instance that does not exist on the path implied by its prefix.
	UnknownChildInstance
	// MissingClockOrReset indicates a pipeline-register insertion was
	// requested for a module that declares no clock (or, when resets are
	// requested, no reset) signal, as either a port or an internal signal.
	MissingClockOrReset
	// RewriteFailure indicates the syntax rewriter could not apply a
	// planned edit (e.g. two edits with overlapping spans).
	RewriteFailure
	// OutputWrite indicates rewritten source could not be written to the
	// output directory.
	OutputWrite
	// MixedDirectionXmr indicates a single canonical path was observed
	// used with both read and write direction, which this implementation
	// refuses to thread through a single port.
	MixedDirectionXmr
)

// String renders a Kind's name, used in diagnostic messages and tests.
func (k Kind) String() string {
	switch k {
	case InputMissing:
		return "InputMissing"
	case FrontendSyntax:
		return "FrontendSyntax"
	case FrontendCompile:
		return "FrontendCompile"
	case UnknownChildInstance:
		return "UnknownChildInstance"
	case MissingClockOrReset:
		return "MissingClockOrReset"
	case RewriteFailure:
		return "RewriteFailure"
	case OutputWrite:
		return "OutputWrite"
	case MixedDirectionXmr:
		return "MixedDirectionXmr"
	default:
		return "Unknown"
	}
}

// Severity distinguishes diagnostics that abort the run from those that are
// merely reported.
type Severity uint

// Recognised severities.
const (
	Fatal Severity = iota
	Warning
)

// Diagnostic is a single structured error or warning produced by any
// pipeline component.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Severity Severity
	// File and Span are both optional: some diagnostics (e.g. a missing
	// top-level module) have no single source location.
	File *source.File
	Span *source.Span
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.File != nil && d.Span != nil {
		line := d.File.FindFirstEnclosingLine(*d.Span)
		return fmt.Sprintf("%s:%d: [%s] %s", d.File.Filename(), line.Number(), d.Kind, d.Message)
	}
	//
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// New constructs a fatal diagnostic with no source location.
func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Severity: Fatal}
}

// Warningf constructs a non-fatal diagnostic with no source location.
func Warningf(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Severity: Warning}
}

// At constructs a fatal diagnostic anchored to a specific source location.
func At(kind Kind, file *source.File, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Severity: Fatal, File: file, Span: &span}
}

// FromSyntaxError lifts a frontend syntax error into a FrontendSyntax
// diagnostic.
func FromSyntaxError(err *source.SyntaxError) *Diagnostic {
	span := err.Span()
	return &Diagnostic{
		Kind:     FrontendSyntax,
		Message:  err.Message(),
		Severity: Fatal,
		File:     err.SourceFile(),
		Span:     &span,
	}
}

// FromError lifts any error returned by sv.Elaborate into a diagnostic: a
// *source.SyntaxError becomes FrontendSyntax with its location preserved,
// anything else (e.g. a "no top-level module" elaboration failure) becomes
// a locationless FrontendCompile diagnostic.
func FromError(err error) *Diagnostic {
	if se, ok := err.(*source.SyntaxError); ok {
		return FromSyntaxError(se)
	}
	//
	return New(FrontendCompile, "%s", err.Error())
}
