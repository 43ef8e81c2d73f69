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


package storage

import (
	"github.com/synaptiq/tagrank/core"
)

// MarshalLearningSnapshot serializes a LearningSnapshot to bytes.
func MarshalLearningSnapshot(snapshot *core.LearningSnapshot) []byte {
	buf := make([]byte, core.LearningSnapshotMUS.Size(*snapshot))
	core.LearningSnapshotMUS.Marshal(*snapshot, buf)
	return buf
}

// UnmarshalLearningSnapshot deserializes a LearningSnapshot from bytes.
func UnmarshalLearningSnapshot(data []byte) (*core.LearningSnapshot, error) {
	snapshot, _, err := core.LearningSnapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// MarshalQueryRecord serializes a QueryRecord to bytes.
func MarshalQueryRecord(record *core.QueryRecord) []byte {
	buf := make([]byte, core.QueryRecordMUS.Size(*record))
	core.QueryRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalQueryRecord deserializes a QueryRecord from bytes.
func UnmarshalQueryRecord(data []byte) (*core.QueryRecord, error) {
	record, _, err := core.QueryRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
