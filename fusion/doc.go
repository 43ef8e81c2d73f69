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


// Package fusion orchestrates multi-backend retrieval.
//
// A Service obtains a retrieval plan, fans out concurrently over the
// planned backends with a worker pool, fuses the ranked lists via weighted
// Reciprocal Rank Fusion (or a simple score merge for a single list),
// applies tag boosting, filters by score threshold and truncates to the
// requested count.
//
// Backend failures are isolated: a failing or unavailable backend
// contributes an empty list and never aborts the overall search. Output
// ordering is deterministic for fixed backend outputs regardless of which
// backend call finishes first.
package fusion
