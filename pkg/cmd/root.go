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

// Package cmd implements the command-line surface: a single cobra command
// that reads CLI flags and the CHECK_OUTPUT environment variable into a
// config.Config, hands it to orchestrator.Run, and prints the result.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/opensv/xmreliminator/pkg/config"
	"github.com/opensv/xmreliminator/pkg/orchestrator"
	"github.com/opensv/xmreliminator/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd eliminates cross-module references from the given SystemVerilog
// source files and writes the rewritten design to the output directory.
var rootCmd = &cobra.Command{
	Use:   "xmreliminator [flags] file...",
	Short: "Eliminate cross-module references from a SystemVerilog design.",
	Long: "xmreliminator rewrites hierarchical (cross-module) signal references in a SystemVerilog\n" +
		"design into plain identifiers threaded through explicitly declared module ports,\n" +
		"optionally inserting pipeline registers along the way.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		//
		cfg := buildConfig(cmd, args)
		res := orchestrator.Run(cfg)
		//
		fmt.Print(res.GetSummary())
		//
		if !res.Success() {
			os.Exit(1)
		}
	},
}

func printVersion() {
	fmt.Print("xmreliminator ")

	if Version != "" {
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Printf("%s", info.Main.Version)
	} else {
		fmt.Printf("(unknown version)")
	}

	fmt.Println()
}

// buildConfig expands ".f" file lists from the positional arguments and
// folds every flag and environment override into a config.Config.
func buildConfig(cmd *cobra.Command, args []string) config.Config {
	cfg := config.Default()
	cfg.Inputs = expandInputs(args)
	cfg.Output = GetString(cmd, "output")
	cfg.Modules = GetStringArray(cmd, "module")
	cfg.TopModule = GetString(cmd, "top")
	cfg.IncludeDirs = GetStringArray(cmd, "include-directory")
	cfg.Isystem = GetStringArray(cmd, "isystem")
	cfg.Defines = GetStringArray(cmd, "define-macro")
	cfg.Undefines = GetStringArray(cmd, "undefine-macro")
	cfg.Verbose = GetFlag(cmd, "verbose")
	cfg.CheckOutput = GetFlag(cmd, "check-output") || GetFlag(cmd, "co")
	//
	cfg.PipeReg.Mode = config.ParsePipeRegMode(GetString(cmd, "pipe-reg-mode"))
	cfg.PipeReg.GlobalCount = GetInt(cmd, "pipe-reg-count")
	cfg.PipeReg.PerModuleCount = GetInt(cmd, "pipe-reg-count")
	cfg.PipeReg.Selective = config.ParseSelective(GetString(cmd, "pipe-reg-count-selective"))
	cfg.PipeReg.Clock = GetString(cmd, "clock")
	cfg.PipeReg.Reset = GetString(cmd, "reset")
	cfg.PipeReg.ResetActiveHigh = GetFlag(cmd, "reset-active-high")
	//
	cfg.ApplyEnvironment()
	//
	return cfg
}

// expandInputs replaces every ".f" argument with the (non-blank, non-comment)
// lines it lists, leaving every other argument untouched.
func expandInputs(args []string) []string {
	var out []string
	//
	for _, a := range args {
		if !strings.HasSuffix(a, ".f") {
			out = append(out, a)
			continue
		}
		//
		for _, line := range util.ReadInputFile(a) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
				continue
			}
			//
			out = append(out, line)
		}
	}
	//
	return out
}

// Execute runs the root command, exiting with status 1 if cobra reports an
// error. This is called by main.main(). It only needs to happen once to the
// rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	//
	rootCmd.PersistentFlags().StringP("output", "o", ".xmrEliminate", "output directory for rewritten files")
	rootCmd.PersistentFlags().StringArrayP("module", "m", nil, "restrict detection to these module definitions (default: all)")
	rootCmd.PersistentFlags().StringP("top", "t", "", "top-level module name (default: inferred)")
	rootCmd.PersistentFlags().StringArrayP("include-directory", "I", nil, "add a directory to the include search path")
	rootCmd.PersistentFlags().StringArray("isystem", nil, "add a system include directory")
	rootCmd.PersistentFlags().StringArrayP("define-macro", "D", nil, "define a preprocessor macro, optionally as name=value")
	rootCmd.PersistentFlags().StringArrayP("undefine-macro", "U", nil, "undefine a preprocessor macro")
	//
	rootCmd.PersistentFlags().String("pipe-reg-mode", "none", "pipeline register insertion mode: none|global|permodule|selective")
	rootCmd.PersistentFlags().Int("pipe-reg-count", 0, "stage count for global/permodule pipeline register modes")
	rootCmd.PersistentFlags().String("pipe-reg-count-selective", "", "per-module stage counts for selective mode, as \"mod=n,mod=n\"")
	rootCmd.PersistentFlags().String("clock", "clk", "name of the clock signal pipeline registers are sensitive to")
	rootCmd.PersistentFlags().String("reset", "rst_n", "name of the reset signal pipeline registers are sensitive to (empty disables reset)")
	rootCmd.PersistentFlags().Bool("reset-active-high", false, "treat the reset signal as active-high rather than active-low")
	//
	rootCmd.PersistentFlags().Bool("check-output", false, "re-elaborate rewritten output before writing it (also: CHECK_OUTPUT=1)")
	rootCmd.PersistentFlags().Bool("co", false, "alias for --check-output")
	//
	log.SetLevel(log.InfoLevel)
}
