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


// Package search retrieves the chunks most similar to a query.
//
// Retriever is the seam between callers and the similarity index.
// ExhaustiveRetriever scans every chunk in the owner's scope and ranks them
// by cosine similarity; an approximate nearest-neighbor index can replace it
// without touching callers.
//
// Searcher embeds a text query and delegates to a Retriever, and
// BuildContext joins ranked chunk texts into the context blob handed to a
// generation model.
package search
