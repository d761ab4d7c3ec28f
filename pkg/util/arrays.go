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

// Prepend creates a new slice containing the result of prepending the given
// item onto the front of the given slice. Unlike the built-in append(), this
// never modifies the given slice — Path relies on that to hand out segment
// slices callers can safely retain.
func Prepend[T any](item T, slice []T) []T {
	n := len(slice)
	nslice := make([]T, n+1)
	copy(nslice[1:], slice)
	nslice[0] = item

	return nslice
}

// Append creates a new slice containing the result of appending the given
// item onto the end of the given slice, without modifying the given slice.
func Append[T any](slice []T, item T) []T {
	n := len(slice)
	nslice := make([]T, n+1)
	copy(nslice[:n], slice)
	nslice[n] = item

	return nslice
}
