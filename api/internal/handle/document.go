package handle

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kyc-verifier/api/internal/domain"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ProcessDocument verifies the uploaded document against the claim in the form.
func (h *Handle) ProcessDocument(c *gin.Context) {
	ctx, cancel, requestID := requestContext(c)
	defer cancel()

	data, ok := h.readUpload(c, requestID)
	if !ok {
		return
	}
	claim := domain.UserClaim{
		FirstName:    c.PostForm("first_name"),
		LastName:     c.PostForm("last_name"),
		StreetName:   c.PostForm("street_name"),
		StreetNumber: c.PostForm("street_number"),
		PostalCode:   c.PostForm("postal_code"),
		City:         c.PostForm("city"),
	}

	res, _, err := h.svc.Verify(ctx, data, h.strategy(c), claim)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	msg := MessageRejected
	if res.IsVerified {
		msg = MessageVerified
	}
	c.JSON(http.StatusOK, gin.H{
		"request_id":  requestID,
		"is_verified": res.IsVerified,
		"message":     msg,
	})
}

// Extract returns the DocumentFields of the uploaded document.
func (h *Handle) Extract(c *gin.Context) {
	ctx, cancel, requestID := requestContext(c)
	defer cancel()

	data, ok := h.readUpload(c, requestID)
	if !ok {
		return
	}
	fields, err := h.svc.ProcessDocument(ctx, data, h.strategy(c))
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

func (h *Handle) strategy(c *gin.Context) string {
	if s := strings.TrimSpace(c.PostForm("processing")); s != "" {
		return s
	}
	return h.defaultStrategy
}

func (h *Handle) readUpload(c *gin.Context, requestID string) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large", "request_id": requestID})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "request_id": requestID})
		return nil, false
	}
	if ct := strings.ToLower(file.Header.Get("Content-Type")); !allowedContentTypes[ct] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      fmt.Sprintf("unsupported file type %q; only JPEG and PNG allowed", ct),
			"request_id": requestID,
		})
		return nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open file", "request_id": requestID})
		return nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file", "request_id": requestID})
		return nil, false
	}
	return data, true
}
