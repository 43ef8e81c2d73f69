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


// Package boost implements the tag boost engine.
//
// The Engine extracts tags from queries and content (hashtags, bracket
// tokens, residual tokens and frontmatter tag lists), expands them through
// the co-occurrence matrix, and re-scores search results with a dynamic
// exponential-spike / logarithmic-damping formula. It also supports blending
// query vectors toward a weighted centroid of matched tag embeddings.
//
// Matrix mutations mark a dirty flag on a debounced Saver, which coalesces
// repeated triggers into a single flush. The Saver takes an injectable clock
// so debounce behavior is deterministic in tests.
package boost
