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
package util

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"path"
)

// ReadInputFile reads an input file as a sequence of lines, transparently
// decompressing a ".bz2" suffix. Used for reading ".f" source file lists.
func ReadInputFile(filename string) []string {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}
	} else if err != nil {
		panic(err)
	}
	//
	defer file.Close()
	//
	var reader io.Reader
	//
	switch path.Ext(filename) {
	case ".bz2":
		reader = bzip2.NewReader(file)
	default:
		reader = file
	}
	//
	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	//
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	//
	return lines
}
