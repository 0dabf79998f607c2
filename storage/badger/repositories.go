// Copyright 2025 Poiesic Systems
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

import (
	"errors"

	"github.com/poiesic/scholia/storage"
)

// Repositories bundles every repository opened over one backend.
type Repositories struct {
	Backend     *Backend
	Documents   *DocumentRepository
	Chunks      *ChunkRepository
	Knowledge   *KnowledgeRepository
	Notebooks   *NotebookRepository
	Contents    *ContentRepository
	Chats       *ChatRepository
	Checkpoints *CheckpointRepository
}

// OpenRepositories opens a backend at path and creates every repository on it.
func OpenRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	repos := &Repositories{
		Backend:     backend,
		Checkpoints: NewCheckpointRepository(backend),
	}

	if repos.Documents, err = NewDocumentRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	if repos.Chunks, err = NewChunkRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	if repos.Knowledge, err = NewKnowledgeRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	if repos.Notebooks, err = NewNotebookRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	if repos.Contents, err = NewContentRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	if repos.Chats, err = NewChatRepository(backend); err != nil {
		return nil, repos.closeAfter(err)
	}
	return repos, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}

// Close releases every sequence and then closes the backend.
func (r *Repositories) Close() error {
	var errs []error
	for _, repo := range r.all() {
		errs = append(errs, repo.Close())
	}
	errs = append(errs, r.Backend.Close())
	return errors.Join(errs...)
}

func (r *Repositories) all() []storage.Repository {
	var repos []storage.Repository
	if r.Documents != nil {
		repos = append(repos, r.Documents)
	}
	if r.Chunks != nil {
		repos = append(repos, r.Chunks)
	}
	if r.Knowledge != nil {
		repos = append(repos, r.Knowledge)
	}
	if r.Notebooks != nil {
		repos = append(repos, r.Notebooks)
	}
	if r.Contents != nil {
		repos = append(repos, r.Contents)
	}
	if r.Chats != nil {
		repos = append(repos, r.Chats)
	}
	return repos
}

func (r *Repositories) closeAfter(err error) error {
	return errors.Join(err, r.Close())
}
