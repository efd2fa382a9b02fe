package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/collection"
	"github.com/codyseavey/pokecard-lookup/internal/export"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/metrics"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/session"
)

const (
	SessionCookie = "collection_session"
	SessionHeader = "X-Collection-Session"
)

// Maximum quantity allowed per collection item
const maxQuantity = 9999

type CollectionHandler struct {
	sessions  *session.Store
	cookieTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewCollectionHandler(sessions *session.Store, cookieTTL time.Duration, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		sessions:  sessions,
		cookieTTL: cookieTTL,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// session resolves the caller's session from the header or cookie, creating
// one when neither names a live session. The id is echoed in both.
func (h *CollectionHandler) session(c *gin.Context) *session.Session {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}

	s, created := h.sessions.GetOrCreate(id)
	if created {
		h.logger.Debug("new collection session", zap.String("session", s.ID))
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, s.ID, int(h.cookieTTL.Seconds()), "/", "", false, true)
	c.Header(SessionHeader, s.ID)
	return s
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	var resp models.CollectionResponse
	_ = h.session(c).With(func(col *collection.Collection) error {
		resp.Items = col.Items()
		resp.CollectionStats = col.Stats()
		return nil
	})
	if resp.Items == nil {
		resp.Items = []models.CollectedCard{}
	}

	c.JSON(http.StatusOK, resp)
}

// AddToCollection adds the posted card, or increments it when the id is
// already collected.
func (h *CollectionHandler) AddToCollection(c *gin.Context) {
	var card models.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if card.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id is required"})
		return
	}
	if card.Language == "" {
		card.Language = models.LanguageEnglish
	}

	var item models.CollectedCard
	var added bool
	_ = h.session(c).With(func(col *collection.Collection) error {
		item, added = col.Add(card)
		return nil
	})

	if added {
		c.JSON(http.StatusCreated, models.CollectionUpdateResponse{Item: item, Operation: "added"})
		return
	}
	c.JSON(http.StatusOK, models.CollectionUpdateResponse{Item: item, Operation: "incremented"})
}

func (h *CollectionHandler) IncrementItem(c *gin.Context) {
	id := c.Param("id")

	var item models.CollectedCard
	err := h.session(c).With(func(col *collection.Collection) error {
		var err error
		if existing, ok := col.Get(id); ok && existing.Quantity >= maxQuantity {
			return errQuantityTooLarge
		}
		item, err = col.Increment(id)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CollectionUpdateResponse{Item: item, Operation: "incremented"})
}

// DecrementItem never takes a quantity below 1; use DELETE to remove.
func (h *CollectionHandler) DecrementItem(c *gin.Context) {
	id := c.Param("id")

	var item models.CollectedCard
	var changed bool
	err := h.session(c).With(func(col *collection.Collection) error {
		var err error
		item, changed, err = col.Decrement(id)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CollectionUpdateResponse{Item: item, Operation: operation(changed, "decremented")})
}

// UpdateCollectionItem sets an explicit quantity. Values below 1 leave the
// item unchanged.
func (h *CollectionHandler) UpdateCollectionItem(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Quantity > maxQuantity {
		h.writeError(c, errQuantityTooLarge)
		return
	}

	var item models.CollectedCard
	var changed bool
	err := h.session(c).With(func(col *collection.Collection) error {
		var err error
		item, changed, err = col.SetQuantity(id, *req.Quantity)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CollectionUpdateResponse{Item: item, Operation: operation(changed, "updated")})
}

func (h *CollectionHandler) DeleteCollectionItem(c *gin.Context) {
	id := c.Param("id")

	err := h.session(c).With(func(col *collection.Collection) error {
		return col.Remove(id)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ExportCollection serves the collection as a CSV attachment.
func (h *CollectionHandler) ExportCollection(c *gin.Context) {
	var items []models.CollectedCard
	_ = h.session(c).With(func(col *collection.Collection) error {
		items = col.Items()
		return nil
	})

	data, err := export.MarshalCSV(items)
	if err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export collection"})
		return
	}

	metrics.CSVExportsTotal.Inc()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(h.now())))
	c.Data(http.StatusOK, export.ContentType, data)
}

var errQuantityTooLarge = fmt.Errorf("quantity exceeds maximum allowed (%d)", maxQuantity)

func (h *CollectionHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, collection.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, errQuantityTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("collection update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func operation(changed bool, verb string) string {
	if changed {
		return verb
	}
	return "unchanged"
}
