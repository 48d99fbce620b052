package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/bootcamp-tracker/middleware"
	"github.com/cppla/bootcamp-tracker/models"
	"github.com/cppla/bootcamp-tracker/services"
	"github.com/cppla/bootcamp-tracker/storage"
	"github.com/cppla/bootcamp-tracker/utils"
)

const (
	defaultPageLimit = 100
	rankingsLimit    = 10
	// RankingsCacheKey holds the cached /rankings response.
	RankingsCacheKey = "rankings:top10"
)

// ResponseCache is the part of utils.Cache the controllers use. A nil *utils.Cache satisfies it.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, v interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{})
	Invalidate(ctx context.Context, keys ...string)
}

func orNoCache(c ResponseCache) ResponseCache {
	if c == nil {
		return (*utils.Cache)(nil)
	}
	return c
}

// respondError maps service errors to HTTP responses. notFound is the message used for
// ErrNotFound; anything unrecognised is logged and answered with a 500 carrying internalCode.
func respondError(ctx *gin.Context, err error, notFound string, internalCode int) {
	var dup *services.DuplicateSubmissionError
	switch {
	case errors.As(err, &dup):
		utils.ErrorWith(ctx, http.StatusBadRequest, utils.ErrorResponse{
			Detail: fmt.Sprintf("already submitted for %s, edit the existing entry from your profile page instead", dup.Date),
			Code:   40010,
			Date:   dup.Date.String(),
			Type:   string(dup.Type),
		})
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, notFound)
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40020, strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "))
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "not authorized to modify this submission")
	case errors.Is(err, storage.ErrTooLarge):
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds the upload limit")
	case errors.Is(err, storage.ErrInvalidName):
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid file name")
	default:
		requestLogger(ctx).Error("request failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, internalCode, "internal server error")
	}
}

func requestLogger(ctx *gin.Context) *zap.Logger {
	return utils.Logger.With(
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.String("path", ctx.FullPath()),
	)
}

// parsePagination reads skip/limit query values, falling back to 0 and defLimit.
func parsePagination(skipStr, limitStr string, defLimit int) (int, int) {
	skip := 0
	limit := defLimit
	if s, err := strconv.Atoi(skipStr); err == nil && s > 0 {
		skip = s
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
	}
	return skip, limit
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// requesterID prefers a verified session over the client supplied id.
func requesterID(ctx *gin.Context, supplied string) uint {
	if id, ok := middleware.SessionUserID(ctx); ok {
		return id
	}
	id, _ := parseID(supplied)
	return id
}

// parseDateField returns nil for empty or malformed dates.
func parseDateField(raw string) *models.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &d
}
