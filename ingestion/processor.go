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


package ingestion

import (
	"context"

	"github.com/poiesic/scholia/core"
)

// processor runs one ingestion pass over a document.
type processor interface {
	// process runs the document identified by id to a terminal status and
	// returns the run outcome (one of the metrics.Outcome constants). A run
	// that could not claim the document reports metrics.OutcomeSkipped.
	process(ctx context.Context, id core.ID) (string, error)
}
