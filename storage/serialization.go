// Copyright 2025 Ailsa Systems
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
	"fmt"

	"github.com/ailsahq/grantseek/core"
	"github.com/fxamacker/cbor/v2"
)

// Stored records are encoded as canonical CBOR so identical values always
// produce identical bytes.
var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// MarshalGrant serializes a Grant to bytes.
func MarshalGrant(grant *core.Grant) ([]byte, error) {
	data, err := encMode.Marshal(grant)
	if err != nil {
		return nil, fmt.Errorf("%w: grant %s: %w", ErrSerializationFailed, grant.Id, err)
	}
	return data, nil
}

// UnmarshalGrant deserializes a Grant from bytes.
func UnmarshalGrant(data []byte) (*core.Grant, error) {
	var grant core.Grant
	if err := cbor.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("%w: grant: %w", ErrSerializationFailed, err)
	}
	return &grant, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := encMode.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d: %w", ErrSerializationFailed, chunk.Id, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var chunk core.Chunk
	if err := cbor.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: chunk: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *Session) ([]byte, error) {
	data, err := encMode.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("%w: session: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalSession deserializes a Session from bytes.
func UnmarshalSession(data []byte) (*Session, error) {
	var session Session
	if err := cbor.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: session: %w", ErrSerializationFailed, err)
	}
	return &session, nil
}
