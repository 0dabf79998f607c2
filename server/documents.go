package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/scholia"
)

func (s *Server) createDocument(c echo.Context) error {
	var req scholia.CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := s.db.CreateDocument(c.Request().Context(), owner(c), req)
	if err != nil {
		return err
	}
	// Ingestion continues in the background.
	return c.JSON(http.StatusAccepted, newDocumentView(doc))
}

func (s *Server) listDocuments(c echo.Context) error {
	docs, err := s.db.ListDocuments(c.Request().Context(), owner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(docs, newDocumentView))
}

func (s *Server) getDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	doc, err := s.db.GetDocument(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDocumentView(doc))
}

func (s *Server) updateDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req scholia.UpdateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := s.db.UpdateDocument(c.Request().Context(), owner(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDocumentView(doc))
}

func (s *Server) deleteDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.db.DeleteDocument(c.Request().Context(), owner(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) retryDocument(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	doc, err := s.db.RetryDocument(c.Request().Context(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, newDocumentView(doc))
}
