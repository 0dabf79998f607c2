package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/poiesic/scholia/core"
)

type searchRequest struct {
	Query       string    `json:"query"`
	K           int       `json:"k"`
	DocumentIDs []core.ID `json:"documentIds"`
}

func (s *Server) search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	results, err := s.db.Search(c.Request().Context(), owner(c), req.Query, req.K, req.DocumentIDs...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(results, func(r *core.SearchResult) searchResultView {
		return searchResultView{
			ChunkID:    r.Chunk.Id,
			DocumentID: r.Chunk.DocumentID,
			Position:   r.Chunk.Position,
			Text:       r.Chunk.Text,
			Score:      r.Score,
		}
	}))
}
