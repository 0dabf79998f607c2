package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/scholia"
	"github.com/poiesic/scholia/core"
)

func (s *Server) createNotebook(c echo.Context) error {
	var req scholia.CreateNotebookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	nb, err := s.db.CreateNotebook(c.Request().Context(), owner(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newNotebookView(nb))
}

func (s *Server) listNotebooks(c echo.Context) error {
	nbs, err := s.db.ListNotebooks(c.Request().Context(), owner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(nbs, newNotebookView))
}

func (s *Server) getNotebook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	nb, err := s.db.GetNotebook(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newNotebookView(nb))
}

func (s *Server) deleteNotebook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.db.DeleteNotebook(c.Request().Context(), owner(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listNotebookDocuments(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	docs, err := s.db.ListNotebookDocuments(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(docs, newDocumentView))
}

func (s *Server) addNotebookDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		DocumentID core.ID `json:"documentId"`
	}
	if err := c.Bind(&req); err != nil || req.DocumentID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "documentId required")
	}
	if err := s.db.AddDocumentToNotebook(c.Request().Context(), owner(c), id, req.DocumentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listMessages(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	messages, err := s.db.ListMessages(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(messages, newMessageView))
}

type sendMessageResponse struct {
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
	User      *messageView `json:"user"`
	Assistant *messageView `json:"assistant"`
}

// sendMessage answers 200 whenever the turn was recorded. A failed answer is
// reported through success=false and the stored error reply.
func (s *Server) sendMessage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	turn, err := s.db.SendMessage(c.Request().Context(), owner(c), id, req.Message)
	if turn == nil {
		return err
	}
	resp := sendMessageResponse{
		Success:   err == nil,
		User:      newMessageView(turn.User),
		Assistant: newMessageView(turn.Assistant),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	contentType := core.ContentType(c.QueryParam("type"))
	items, err := s.db.ListGeneratedContent(c.Request().Context(), owner(c), id, contentType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(items, newContentView))
}

func (s *Server) generateContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req scholia.GenerateContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.NotebookID = id
	content, err := s.db.GenerateContent(c.Request().Context(), owner(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newContentView(content))
}

func (s *Server) getContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	content, err := s.db.GetGeneratedContent(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newContentView(content))
}
