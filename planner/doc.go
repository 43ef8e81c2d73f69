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


// Package planner turns free-text queries into retrieval plans.
//
// AnalyzeQuery is a pure function extracting keywords, tags, time
// references (English and CJK keyword dictionaries plus a specific-date
// pattern), question detection and intent. Plan combines the analysis with
// caller options into source selection, per-source budgets, a retrieval
// mode and optional fusion, boosting, reranking and time-filter settings.
package planner
