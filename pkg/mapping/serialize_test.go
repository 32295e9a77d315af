// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	c := NewMappingCompiler(nil)
	m, err := c.Compile([]byte(sampleCMF))
	require.NoError(t, err)

	data, err := Serialize(m)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, MappingEqual(m, parsed), "parse(serialize(m)) must equal m (§6.5)")

	data2, err := Serialize(parsed)
	require.NoError(t, err)
	assert.Equal(t, data, data2, "re-serializing a parsed mapping must be byte-identical")
}

func TestMappingEqual_DetectsDifference(t *testing.T) {
	a := &GraphMapping{Namespaces: map[string]string{"j": "http://example.org/j"}}
	b := &GraphMapping{Namespaces: map[string]string{"j": "http://example.org/other"}}
	assert.False(t, MappingEqual(a, b))
}
