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


package badger

import "github.com/ailsahq/grantseek/storage"

// NewMemoryRepositories creates in-memory grant, chunk, and session
// repositories for testing. Returns grantRepo, chunkRepo, sessionRepo,
// backend, and error. Caller must close the repos and backend when done.
func NewMemoryRepositories(sessionOpts ...SessionOption) (storage.GrantRepository, storage.ChunkRepository, storage.SessionRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	grantRepo, err := NewGrantRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	chunkRepo, err := NewChunkRepository(backend)
	if err != nil {
		grantRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	sessionRepo, err := NewSessionRepository(backend, sessionOpts...)
	if err != nil {
		chunkRepo.Close()
		grantRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return grantRepo, chunkRepo, sessionRepo, backend, nil
}
