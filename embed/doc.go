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

// Package embed provides text embedding services and the tag vector cache
// used for query vector boosting.
//
// The package defines the Embedder interface and a TagVectorCache that
// memoizes per-tag embeddings so repeated boosts never re-embed the same
// tag. Two implementation sub-packages exist:
//
//   - embed/openai: production implementation against OpenAI-compatible
//     embedding APIs (Ollama, LocalAI, vLLM, OpenAI itself)
//   - embed/mock: deterministic test doubles with no network dependency
//
// Production constructors return the Embedder interface; mock constructors
// return concrete types so tests can inject behavior and assert call counts.
package embed
