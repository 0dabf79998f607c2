package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/poiesic/scholia"
	"github.com/poiesic/scholia/config"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/reembed"
	"github.com/poiesic/scholia/server"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func defaultOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// setupLogger loads the configuration and installs the default logger.
// The loaded configuration is kept in the app metadata for the commands.
func setupLogger(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	slog.SetDefault(cfg.NewLogger(c.App.ErrWriter))

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func loadedConfig(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// openDatabase opens the configured database. Commands run by the local user
// may ingest file:// sources; opts are applied last.
func openDatabase(c *cli.Context, opts ...scholia.DatabaseOption) (*scholia.Database, *config.Config, error) {
	cfg, err := loadedConfig(c)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]scholia.DatabaseOption{
		scholia.WithConfig(cfg),
		scholia.WithLogger(slog.Default()),
		scholia.WithLocalFiles(true),
	}, opts...)
	db, err := scholia.NewDatabase(cfg.Storage.Path, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

func ownerOf(c *cli.Context) core.OwnerID {
	return core.OwnerID(c.String("owner"))
}

func serveCommand(c *cli.Context) error {
	// HTTP callers must not make the server read its own filesystem.
	db, cfg, err := openDatabase(c, scholia.WithLocalFiles(false))
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := server.New(db, server.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = cfg.Addr()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()
	slog.Info("server listening", "addr", addr, "db", cfg.Storage.Path)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// documentRequest builds the create request from the ingest flags and the
// optional file argument.
func documentRequest(c *cli.Context) (scholia.CreateDocumentRequest, error) {
	req := scholia.CreateDocumentRequest{
		Name:       c.String("name"),
		Type:       core.DocumentType(c.String("type")),
		SourceURL:  c.String("url"),
		NotebookID: core.ID(c.Uint64("notebook")),
	}
	path := c.Args().First()

	switch {
	case c.IsSet("text"):
		text := c.String("text")
		req.Text = &text
		if req.Type == "" {
			req.Type = core.DocumentTypeText
		}
	case path != "":
		abs, err := filepath.Abs(path)
		if err != nil {
			return req, err
		}
		if req.Name == "" {
			req.Name = filepath.Base(abs)
		}
		if req.Type == "" {
			req.Type = typeForPath(abs)
		}
		if req.Type == core.DocumentTypeText {
			data, err := os.ReadFile(abs)
			if err != nil {
				return req, fmt.Errorf("failed to read %s: %w", path, err)
			}
			text := string(data)
			req.Text = &text
		} else {
			req.SourceURL = "file://" + filepath.ToSlash(abs)
		}
	case req.SourceURL != "":
		if req.Type == "" {
			req.Type = core.DocumentTypeURL
		}
	default:
		return req, errors.New("one of a file argument, --text or --url is required")
	}

	if req.Name == "" {
		req.Name = req.SourceURL
	}
	if req.Name == "" {
		req.Name = "Untitled"
	}
	return req, nil
}

func typeForPath(path string) core.DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return core.DocumentTypePDF
	case ".docx", ".doc":
		return core.DocumentTypeWord
	case ".html", ".htm":
		return core.DocumentTypeURL
	}
	return core.DocumentTypeText
}

func ingestCommand(c *cli.Context) error {
	req, err := documentRequest(c)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := c.Context
	doc, err := db.CreateDocument(ctx, ownerOf(c), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Document %d created, ingesting...\n", doc.Id)
	db.Wait()

	doc, err = db.GetDocument(ctx, ownerOf(c), doc.Id)
	if err != nil {
		return err
	}
	printDocument(c, doc)
	if doc.Status.IsFailed() {
		return fmt.Errorf("ingestion failed: %s", doc.Status.Message())
	}
	return nil
}

func printDocument(c *cli.Context, doc *core.Document) {
	fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\n", doc.Id, doc.Type, doc.Status, doc.Name)
}

func parseID(c *cli.Context, index int, what string) (core.ID, error) {
	raw := c.Args().Get(index)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", what)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return core.ID(id), nil
}

func statusCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.Args().Present() {
		id, err := parseID(c, 0, "document id")
		if err != nil {
			return err
		}
		doc, err := db.GetDocument(c.Context, ownerOf(c), id)
		if err != nil {
			return err
		}
		printDocument(c, doc)
		return nil
	}

	docs, err := db.ListDocuments(c.Context, ownerOf(c))
	if err != nil {
		return err
	}
	for _, doc := range docs {
		printDocument(c, doc)
	}
	return nil
}

func retryCommand(c *cli.Context) error {
	id, err := parseID(c, 0, "document id")
	if err != nil {
		return err
	}
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.RetryDocument(c.Context, ownerOf(c), id); err != nil {
		return err
	}
	db.Wait()

	doc, err := db.GetDocument(c.Context, ownerOf(c), id)
	if err != nil {
		return err
	}
	printDocument(c, doc)
	return nil
}

func notebookCommand(c *cli.Context) error {
	title := strings.Join(c.Args().Slice(), " ")
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	nb, err := db.CreateNotebook(c.Context, ownerOf(c), scholia.CreateNotebookRequest{
		Title:       title,
		Description: c.String("description"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d\t%s\n", nb.Id, nb.Title)
	return nil
}

func askCommand(c *cli.Context) error {
	notebookID, err := parseID(c, 0, "notebook id")
	if err != nil {
		return err
	}
	message := strings.Join(c.Args().Tail(), " ")

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	turn, err := db.SendMessage(c.Context, ownerOf(c), notebookID, message)
	if turn != nil && turn.Assistant != nil {
		fmt.Fprintln(c.App.Writer, turn.Assistant.Content)
	}
	return err
}

func generateCommand(c *cli.Context) error {
	notebookID, err := parseID(c, 0, "notebook id")
	if err != nil {
		return err
	}
	var docIDs []core.ID
	for _, id := range c.Uint64Slice("doc") {
		docIDs = append(docIDs, core.ID(id))
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	content, err := db.GenerateContent(c.Context, ownerOf(c), scholia.GenerateContentRequest{
		NotebookID:  notebookID,
		DocumentIDs: docIDs,
		Type:        core.ContentType(c.String("type")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "# %s\n\n%s\n", content.Title, content.Body)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	var docIDs []core.ID
	for _, id := range c.Uint64Slice("doc") {
		docIDs = append(docIDs, core.ID(id))
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(c.Context, ownerOf(c), query, c.Int("k"), docIDs...)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: [%0.3f] doc %d: %s\n", i, hit.Score, hit.Chunk.DocumentID, hit.Chunk.Text)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Storage.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
