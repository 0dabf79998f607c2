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


package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "scholia",
		Usage: "Notebook-style research assistant over your own documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				EnvVars: []string{"SCHOLIA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the configuration file",
			},
			&cli.StringFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "Owner identity used by local commands",
				EnvVars: []string{"SCHOLIA_OWNER"},
				Value:   defaultOwner(),
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to the configured host and port)",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Time allowed for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Add a document and wait for ingestion to finish",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Document type (pdf, text, word, url); guessed from the file extension when empty",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Document name (defaults to the file name or URL)",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Inline document text",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Remote source URL",
					},
					&cli.Uint64Flag{
						Name:  "notebook",
						Usage: "Notebook to link the document to",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show documents and their ingestion status",
				ArgsUsage: "[document-id]",
				Action:    statusCommand,
			},
			{
				Name:      "retry",
				Usage:     "Re-run ingestion for a failed document",
				ArgsUsage: "<document-id>",
				Action:    retryCommand,
			},
			{
				Name:      "notebook",
				Usage:     "Create a notebook",
				ArgsUsage: "<title>",
				Action:    notebookCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Notebook description",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Send a chat message to a notebook",
				ArgsUsage: "<notebook-id> <message>",
				Action:    askCommand,
			},
			{
				Name:      "generate",
				Usage:     "Generate structured content from documents",
				ArgsUsage: "<notebook-id>",
				Action:    generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (study_guide, faq, briefing_doc, timeline)",
						Value: "study_guide",
					},
					&cli.Uint64SliceFlag{
						Name:     "doc",
						Usage:    "Source document id (repeatable)",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find the chunks most similar to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of results",
						Value:   5,
					},
					&cli.Uint64SliceFlag{
						Name:  "doc",
						Usage: "Restrict results to a document (repeatable)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute embeddings for every stored chunk",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}
