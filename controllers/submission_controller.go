package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/bootcamp-tracker/models"
	"github.com/cppla/bootcamp-tracker/services"
	"github.com/cppla/bootcamp-tracker/storage"
	"github.com/cppla/bootcamp-tracker/utils"
)

const (
	// AdminSecretHeader carries the shared admin secret.
	AdminSecretHeader = "x-admin-pass"
	// UserIDHeader identifies the caller on DELETE, which has no form body.
	UserIDHeader = "x-user-id"
)

// SubmissionController exposes the submission ledger over HTTP.
type SubmissionController struct {
	ledger   *services.Ledger
	policy   *services.Policy
	store    storage.Store
	cache    ResponseCache
	maxBytes int64
}

// NewSubmissionController creates a new controller instance. maxUploadBytes <= 0 disables the
// early size check; the store still enforces its own cap.
func NewSubmissionController(ledger *services.Ledger, policy *services.Policy, store storage.Store, cache ResponseCache, maxUploadBytes int64) *SubmissionController {
	return &SubmissionController{
		ledger:   ledger,
		policy:   policy,
		store:    store,
		cache:    orNoCache(cache),
		maxBytes: maxUploadBytes,
	}
}

// CreateSubmission records a new entry from multipart or urlencoded form data.
func (s *SubmissionController) CreateSubmission(ctx *gin.Context) {
	userID := requesterID(ctx, ctx.PostForm("user_id"))
	if userID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "user_id is required")
		return
	}
	subType := models.SubmissionType(strings.TrimSpace(ctx.PostForm("type")))
	if !subType.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid submission type")
		return
	}

	date := parseDateField(ctx.PostForm("date_str"))
	if date == nil {
		today := s.ledger.Today()
		date = &today
	}

	// reject a duplicate before anything is written to storage
	if subType.DailyLimited() {
		existing, err := s.ledger.CheckDailySubmission(ctx.Request.Context(), userID, subType, *date)
		if err != nil {
			respondError(ctx, err, "user not found", 50010)
			return
		}
		if existing != nil {
			respondError(ctx, &services.DuplicateSubmissionError{Type: subType, Date: *date}, "", 50010)
			return
		}
	}

	imageURL, err := s.saveUpload(ctx)
	if err != nil {
		respondError(ctx, err, "user not found", 50011)
		return
	}

	sub, err := s.ledger.CreateSubmission(ctx.Request.Context(), services.NewSubmission{
		UserID:   userID,
		Type:     subType,
		Content:  ctx.PostForm("content"),
		Date:     date,
		ImageURL: imageURL,
	})
	if err != nil {
		respondError(ctx, err, "user not found", 50012)
		return
	}
	s.cache.Invalidate(ctx.Request.Context(), RankingsCacheKey)

	utils.Success(ctx, models.SubmissionView{Submission: *sub})
}

// ListSubmissions returns entries newest first with their owner's name.
func (s *SubmissionController) ListSubmissions(ctx *gin.Context) {
	skip, limit := parsePagination(ctx.Query("skip"), ctx.Query("limit"), defaultPageLimit)
	filter := services.SubmissionFilter{
		Type:  ctx.Query("type"),
		Skip:  skip,
		Limit: limit,
	}
	if raw := ctx.Query("user_id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40013, "invalid user_id")
			return
		}
		filter.UserID = id
	}

	subs, err := s.ledger.ListSubmissions(ctx.Request.Context(), filter)
	if err != nil {
		respondError(ctx, err, "submission not found", 50013)
		return
	}
	utils.Success(ctx, subs)
}

// UpdateSubmission edits content, date or image. Only the owner or an admin may edit.
func (s *SubmissionController) UpdateSubmission(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid submission id")
		return
	}
	userID := ctx.PostForm("user_id")
	if requesterID(ctx, userID) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "user_id is required")
		return
	}
	if !s.authorize(ctx, id, userID) {
		return
	}

	changes := services.SubmissionChanges{Date: parseDateField(ctx.PostForm("date_str"))}
	if content, ok := ctx.GetPostForm("content"); ok {
		changes.Content = &content
	}

	imageURL, err := s.saveUpload(ctx)
	if err != nil {
		respondError(ctx, err, "submission not found", 50014)
		return
	}
	changes.ImageURL = imageURL

	view, err := s.ledger.UpdateSubmission(ctx.Request.Context(), id, changes)
	if err != nil {
		respondError(ctx, err, "submission not found", 50015)
		return
	}
	utils.Success(ctx, view)
}

// DeleteSubmission removes an entry and its points. Only the owner or an admin may delete.
func (s *SubmissionController) DeleteSubmission(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid submission id")
		return
	}
	if !s.authorize(ctx, id, ctx.GetHeader(UserIDHeader)) {
		return
	}

	if err := s.ledger.DeleteSubmission(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err, "submission not found", 50016)
		return
	}
	s.cache.Invalidate(ctx.Request.Context(), RankingsCacheKey)

	utils.Success(ctx, gin.H{"status": "success"})
}

// authorize loads the submission and checks the caller against the policy, writing the
// error response itself when the caller may not proceed.
func (s *SubmissionController) authorize(ctx *gin.Context, id uint, suppliedUserID string) bool {
	sub, err := s.ledger.GetSubmission(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "submission not found", 50017)
		return false
	}
	requester := requesterID(ctx, suppliedUserID)
	if !s.policy.CanModify(sub, requester, ctx.GetHeader(AdminSecretHeader)) {
		requestLogger(ctx).Info("submission change denied",
			zap.Uint("submission_id", id),
			zap.Uint("requester_id", requester),
		)
		respondError(ctx, services.ErrForbidden, "", 50017)
		return false
	}
	return true
}

// saveUpload stores the optional "file" part and returns its URL, or "" when none was sent.
func (s *SubmissionController) saveUpload(ctx *gin.Context) (string, error) {
	header, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: unreadable upload", services.ErrValidation)
	}
	if header.Filename == "" {
		return "", nil
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", storage.ErrTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	url, err := s.store.Save(ctx.Request.Context(), header.Filename, f)
	if err != nil {
		return "", err
	}
	requestLogger(ctx).Info("upload stored", zap.String("url", url), zap.Int64("size", header.Size))
	return url, nil
}
