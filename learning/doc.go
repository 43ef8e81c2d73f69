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


// Package learning implements the self-learning engine.
//
// The Engine observes recorded queries and explicit feedback to derive a
// per-tag learned weight in [0.5, 2.0], decayed with a seven-day half-life.
// It maintains its own co-occurrence matrix of query-tag pairs and mines the
// bounded query history for new tag associations via pointwise mutual
// information, emitting suggestions that callers may confirm back into the
// matrix.
//
// All history collections are capped: the query ring holds 1000 records, the
// feedback log 500, and the per-result selection table prunes itself to its
// most recently selected 80% once it exceeds 1000 entries.
//
// State is snapshotted to an optional store on a fixed interval and once
// more on Close. A missing or malformed snapshot results in a cold, empty
// start, never a startup failure.
package learning
