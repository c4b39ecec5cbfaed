package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homelist/internal/domain"
	"homelist/internal/service"
)

type createListingRequest struct {
	Type         domain.ListingType `json:"type" binding:"required,listingtype"`
	AvailableNow *bool              `json:"availableNow" binding:"required"`
	Address      string             `json:"address" binding:"required"`
}

type updateListingRequest struct {
	Type         *domain.ListingType `json:"type" binding:"omitempty,listingtype"`
	AvailableNow *bool               `json:"availableNow"`
	Address      *string             `json:"address"`
}

type listListingsQuery struct {
	Type         string `form:"type" binding:"omitempty,listingtype"`
	AvailableNow *bool  `form:"available_now"`
	UserID       int64  `form:"user_id" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

// ReadListingResponse is the public view of a listing; it omits the owner.
type ReadListingResponse struct {
	ID           int64              `json:"id"`
	Type         domain.ListingType `json:"type"`
	AvailableNow bool               `json:"availableNow"`
	Address      string             `json:"address"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type ListingResponse struct {
	ReadListingResponse
	UserID int64 `json:"user_id"`
}

type listingPage struct {
	Items []ListingResponse `json:"items"`
	Total int64             `json:"total"`
}

func listingToRead(l *domain.Listing) ReadListingResponse {
	return ReadListingResponse{
		ID:           l.ID,
		Type:         l.Type,
		AvailableNow: l.AvailableNow,
		Address:      l.Address,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func listingToResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{ReadListingResponse: listingToRead(l), UserID: l.UserID}
}

func (h *Handler) listListings(c *gin.Context) {
	var q listListingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBindError(c, "query", err)
		return
	}

	listings, total, err := h.listings.List(c.Request.Context(), domain.ListingFilter{
		Type:         domain.ListingType(q.Type),
		AvailableNow: q.AvailableNow,
		UserID:       q.UserID,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	page := listingPage{Items: make([]ListingResponse, len(listings)), Total: total}
	for i := range listings {
		page.Items[i] = listingToResponse(&listings[i])
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listingToRead(listing))
}

func (h *Handler) createListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, "body", err)
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), currentUser(c).ID, service.ListingInput{
		Type:         req.Type,
		AvailableNow: *req.AvailableNow,
		Address:      req.Address,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listingToResponse(listing))
}

func (h *Handler) updateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, "body", err)
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), currentUser(c).ID, id, service.ListingPatch{
		Type:         req.Type,
		AvailableNow: req.AvailableNow,
		Address:      req.Address,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listingToResponse(listing))
}

func (h *Handler) deleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.listings.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.abortWithError(c, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"listing_id": id, "user_id": currentUser(c).ID}).Info("listing deleted")
	c.Status(http.StatusNoContent)
}

// listingID parses the :id path parameter, aborting with 422 when it is not
// a positive integer.
func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []fieldError{{
			Loc:  []string{"path", "listing_id"},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		}}})
		return 0, false
	}
	return id, true
}
