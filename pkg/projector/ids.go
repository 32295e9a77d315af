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

package projector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FileHash computes the file-scoped identity prefix (§4.4.1):
// firstNBytes(8, hex(sha256(filename || uploadId || contentHash))).
// Every emitted node id is prefixed with this value; it is the sole
// mechanism preventing collisions between instances that reuse local
// identifiers such as "P01" or "CH01".
func FileHash(filename, uploadID, contentHash string) string {
	sum := sha256.Sum256([]byte(filename + uploadID + contentHash))
	return hex.EncodeToString(sum[:])[:16] // 8 bytes == 16 hex chars
}

// ContentHash computes the content-addressed hash of raw instance bytes,
// the contentHash component fed into FileHash.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// explicitNodeID builds the "{fileHash}_{structuresId}" id pattern
// (§4.4.2 rule 1, Invariant N1).
func explicitNodeID(fileHash, structuresID string) string {
	return fmt.Sprintf("%s_%s", fileHash, structuresID)
}

// hubNodeID builds the "{fileHash}_hub_{entityId}" id pattern
// (§4.4.2 rule 3, §4.4.5, Invariant N1).
func hubNodeID(fileHash, entityID string) string {
	return fmt.Sprintf("%s_hub_%s", fileHash, entityID)
}

// syntheticNodeID builds the "{fileHash}_syn_{hash16}" id pattern
// (§4.4.2 rule 4, Invariant N1):
//
//	nodeId = fileHash + "_syn_" + firstNBytes(16, hex(sha256(parentId || "|" || qname || "|" || ordinalPath)))
func syntheticNodeID(fileHash, parentID, qname, ordinalPath string) string {
	sum := sha256.Sum256([]byte(parentID + "|" + qname + "|" + ordinalPath))
	h := hex.EncodeToString(sum[:])[:32] // 16 bytes == 32 hex chars
	return fmt.Sprintf("%s_syn_%s", fileHash, h)
}
