package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vedant281104/AgriShield/internal/credentials"
	"github.com/vedant281104/AgriShield/internal/ensemble"
	"github.com/vedant281104/AgriShield/internal/imaging"
	"github.com/vedant281104/AgriShield/internal/server/auth"
)

// multipartSlack covers multipart boundaries and part headers on top of the
// image itself.
const multipartSlack = 64 << 10

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type classifyResponse struct {
	Label             string  `json:"label"`
	ConfidencePercent float64 `json:"confidence_percent"`
	Advisory          string  `json:"advisory"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	outcome, err := s.store.Register(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Error(ctx, "register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if outcome == credentials.RegisterDuplicate {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	outcome, err := s.store.Verify(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Error(ctx, "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if outcome != credentials.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := auth.GenerateToken(req.Username, s.opts.SecretKey, s.opts.TokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (s *Server) labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": s.catalog.Entries()})
}

func (s *Server) classify(c *gin.Context) {
	ctx := c.Request.Context()
	limit := s.opts.MaxUploadBytes

	if limit > 0 {
		if c.Request.ContentLength > limit+multipartSlack {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)
	}

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if limit > 0 && file.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}
	if !acceptableImageType(file.Header.Get("Content-Type")) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "image content type required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}

	result, err := s.classifier.Classify(ctx, data)
	if err != nil {
		status, msg := classifyErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error(ctx, "classification failed", "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	subject, _ := SubjectFromContext(ctx)
	s.logger.Info(ctx, "image classified", "user", subject, "label", result.Label.String(), "confidence", result.Confidence)

	c.JSON(http.StatusOK, classifyResponse{
		Label:             result.Label.String(),
		ConfidencePercent: result.ConfidencePercent(),
		Advisory:          s.catalog.Lookup(result.Label),
	})
}

// acceptableImageType allows image/* and the generic types browsers and
// curl send when they cannot guess.
func acceptableImageType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/") || mt == "application/octet-stream"
}

func classifyErrorStatus(err error) (int, string) {
	var inputShape *ensemble.InputShapeError
	switch {
	case errors.Is(err, imaging.ErrDecode):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &inputShape):
		return http.StatusBadRequest, err.Error()
	case ensemble.IsConfigurationFault(err):
		return http.StatusInternalServerError, "model configuration fault"
	default:
		return http.StatusInternalServerError, "classification failed"
	}
}
