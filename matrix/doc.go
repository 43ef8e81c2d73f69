// Copyright 2025 Synaptiq Systems
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


// Package matrix implements the symmetric tag co-occurrence matrix.
//
// The Matrix maps unordered tag pairs to a non-negative weight and keeps
// per-tag frequency and document-count metadata. It is built in bulk from
// (document, tags) pairs or incrementally through AddRelation, and supports
// multi-hop breadth-first expansion with per-hop decay as well as PMI-ranked
// association queries.
//
// Writes are buffered and merged on an internal flush; every read path
// flushes first, so read-after-write consistency holds on a per-instance
// basis.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package matrix
