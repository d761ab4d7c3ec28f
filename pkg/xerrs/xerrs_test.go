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
package xerrs

import (
	"errors"
	"strings"
	"testing"

	"github.com/opensv/xmreliminator/pkg/source"
)

func TestNewIsFatalAndFormats(t *testing.T) {
	d := New(UnknownChildInstance, "no instance named %q", "u_ghost")

	if d.Severity != Fatal {
		t.Error("New should produce a Fatal diagnostic")
	}

	if got, want := d.Error(), `[UnknownChildInstance] no instance named "u_ghost"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWarningfIsWarning(t *testing.T) {
	d := Warningf(InputMissing, "nothing to do")
	if d.Severity != Warning {
		t.Error("Warningf should produce a Warning diagnostic")
	}
}

func TestAtIncludesLineNumber(t *testing.T) {
	f := source.NewFile("design.sv", []byte("line one\nline two\n"))
	span := source.NewSpan(9, 13) // "line" on the second line

	d := At(FrontendCompile, f, span, "bad token")

	if !strings.HasPrefix(d.Error(), "design.sv:2:") {
		t.Errorf("Error() = %q, want a design.sv:2: prefix", d.Error())
	}
}

func TestFromErrorWrapsPlainError(t *testing.T) {
	d := FromError(errors.New("no top-level module found"))

	if d.Kind != FrontendCompile {
		t.Errorf("Kind = %v, want FrontendCompile", d.Kind)
	}

	if d.File != nil || d.Span != nil {
		t.Error("a plain error should produce a locationless diagnostic")
	}
}

func TestFromErrorLiftsSyntaxError(t *testing.T) {
	f := source.NewFile("design.sv", []byte("module top(;\nendmodule\n"))
	span := source.NewSpan(11, 12)
	se := f.SyntaxError(span, "unexpected ';'")

	d := FromError(se)

	if d.Kind != FrontendSyntax {
		t.Errorf("Kind = %v, want FrontendSyntax", d.Kind)
	}

	if d.File != f {
		t.Error("expected the diagnostic to retain the originating file")
	}
}
