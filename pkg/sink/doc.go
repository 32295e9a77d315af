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

// Package sink defines the narrow external-collaborator interfaces the
// core depends on: a blob key-value store and a property-graph sink.
//
// Neither interface is a general-purpose database client. The graph sink
// in particular accepts only the two statement shapes the projector ever
// emits (node MERGE, edge MERGE) and never sees user data inlined into
// statement text — all instance-derived values travel as parameters. This
// package ships in-memory reference implementations used by tests and by
// the CLI's local-exploration mode; a production deployment supplies its
// own GraphSink backed by a real graph database and its own BlobSink
// backed by object storage.
package sink
