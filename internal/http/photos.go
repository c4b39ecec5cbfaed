package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homelist/internal/domain"
	"homelist/internal/service"
)

type PhotoResponse struct {
	Key          string     `json:"key"`
	URL          string     `json:"url"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

func photoToResponse(p domain.Photo) PhotoResponse {
	return PhotoResponse{
		Key:          p.Key,
		URL:          p.URL,
		Size:         p.Size,
		LastModified: p.LastModified,
	}
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	if h.photos == nil {
		h.abortWithError(c, service.ErrStorageDisabled)
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithBindError(c, "body", err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	defer file.Close()

	photo, err := h.photos.Upload(c.Request.Context(), currentUser(c).ID, id, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"listing_id": id,
		"photo":      photo.Key,
		"size":       photo.Size,
	}).Info("photo uploaded")
	c.JSON(http.StatusCreated, photoToResponse(*photo))
}

func (h *Handler) listPhotos(c *gin.Context) {
	if h.photos == nil {
		h.abortWithError(c, service.ErrStorageDisabled)
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	photos, err := h.photos.List(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := make([]PhotoResponse, len(photos))
	for i := range photos {
		resp[i] = photoToResponse(photos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deletePhoto(c *gin.Context) {
	if h.photos == nil {
		h.abortWithError(c, service.ErrStorageDisabled)
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.photos.Delete(c.Request.Context(), currentUser(c).ID, id, c.Param("photo")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
