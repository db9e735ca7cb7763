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


package grantseek

import (
	"log/slog"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/ai/openai"
	"github.com/ailsahq/grantseek/ingestion"
	"github.com/ailsahq/grantseek/search"
	"github.com/ailsahq/grantseek/storage"
	"github.com/ailsahq/grantseek/storage/badger"
)

// Database bundles the storage backend, its repositories, and the AI provider
// behind a single open/close lifecycle.
type Database struct {
	backend     *badger.Backend
	grantRepo   storage.GrantRepository
	chunkRepo   storage.ChunkRepository
	sessionRepo storage.SessionRepository
	provider    ai.AIProvider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig    *ai.Config
	sessionOpts []badger.SessionOption
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithSessionOptions forwards options to the session repository, e.g. a
// custom reference bound or eviction window.
func WithSessionOptions(opts ...badger.SessionOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create grant repository
	grantRepo, err := badger.NewGrantRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		grantRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create session repository
	sessionRepo, err := badger.NewSessionRepository(backend, options.sessionOpts...)
	if err != nil {
		chunkRepo.Close()
		grantRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		sessionRepo.Close()
		chunkRepo.Close()
		grantRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		grantRepo:   grantRepo,
		chunkRepo:   chunkRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.sessionRepo.Close(); err != nil {
		db.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.grantRepo.Close(); err != nil {
		db.logger.Error("error closing grant repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) GrantRepository() storage.GrantRepository {
	return db.grantRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) SessionRepository() storage.SessionRepository {
	return db.sessionRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.grantRepo, db.chunkRepo, db.provider, opts...)
}

func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.grantRepo, db.chunkRepo, db.sessionRepo, db.provider, opts...)
}
