// Package server wires the catalog store to its HTTP surface. Handlers talk
// only to the in-memory store; persistence happens in the flush scheduler.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"songvault/internal/catalog"
)

// Handler serves the /songs routes against a catalog store.
type Handler struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New creates a Handler.
func New(store *catalog.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/songs/new", h.create)
	router.POST("/songs/play/:id", h.play)
	router.GET("/songs/search", h.search)

	return router
}

type createRequest struct {
	Title  string `json:"title" binding:"required"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Genre  string `json:"genre"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := h.store.Insert(req.Title, req.Artist, req.Album, req.Genre)
	h.logger.Info("song created", "id", rec.ID, "title", rec.Title, "artist", rec.Artist)
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) play(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid song id"})
		return
	}

	rec, err := h.store.IncrementPlay(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) search(c *gin.Context) {
	results := h.store.Search(catalog.Query{
		Title:  c.Query("title"),
		Artist: c.Query("artist"),
		Album:  c.Query("album"),
		Genre:  c.Query("genre"),
	})
	if results == nil {
		results = []catalog.Record{}
	}
	c.JSON(http.StatusOK, results)
}
