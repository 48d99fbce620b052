package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/bootcamp-tracker/models"
)

// Ledger owns the submission lifecycle and keeps users' total points in step with it.
// Every points change happens in the same transaction as the insert or delete that causes it.
type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewLedger creates a Ledger backed by db.
func NewLedger(db *gorm.DB, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{db: db, log: logger, now: time.Now}
}

// Today returns the current calendar day on the ledger's clock.
func (l *Ledger) Today() models.Date {
	return models.DateOf(l.now())
}

// NewSubmission describes a submission to create. A nil Date means today.
type NewSubmission struct {
	UserID   uint
	Type     models.SubmissionType
	Content  string
	Date     *models.Date
	ImageURL string
}

// SubmissionChanges describes an edit. Nil or empty fields are left untouched.
type SubmissionChanges struct {
	Content  *string
	Date     *models.Date
	ImageURL string
}

// SubmissionFilter selects and paginates submissions. Type "" or "all" matches every type.
type SubmissionFilter struct {
	Type   string
	UserID uint
	Skip   int
	Limit  int
}

// CreateSubmission stores a new submission and credits its points to the owner.
func (l *Ledger) CreateSubmission(ctx context.Context, in NewSubmission) (*models.Submission, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid submission type %q", ErrValidation, in.Type)
	}

	date := l.Today()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	content := in.Content
	if in.ImageURL != "" {
		merged, err := l.mergeImage(in.Content, in.ImageURL)
		if err != nil {
			return nil, err
		}
		content = merged
	}

	sub := models.Submission{
		UserID:  in.UserID,
		Type:    in.Type,
		Content: content,
		Date:    date,
		Points:  models.SubmissionPoints,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the owner row lock serializes concurrent creates for one user,
		// which keeps both the daily check and the points increment race free
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&owner, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", in.UserID, ErrNotFound)
			}
			return err
		}

		if in.Type.DailyLimited() {
			existing, err := findDaily(tx, owner.ID, in.Type, date)
			if err != nil {
				return err
			}
			if existing != nil {
				return &DuplicateSubmissionError{Type: in.Type, Date: date}
			}
		}

		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", owner.ID).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", sub.Points)).Error
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("submission created",
		zap.Uint("submission_id", sub.ID),
		zap.Uint("user_id", sub.UserID),
		zap.String("type", string(sub.Type)),
		zap.Stringer("date", sub.Date),
		zap.Int("points", sub.Points),
	)
	return &sub, nil
}

// UpdateSubmission edits content and date. Points, type and owner are never changed and the
// daily limit does not apply to edits.
func (l *Ledger) UpdateSubmission(ctx context.Context, id uint, ch SubmissionChanges) (*models.SubmissionView, error) {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Submission
		if err := tx.First(&sub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("submission %d: %w", id, ErrNotFound)
			}
			return err
		}

		updates := map[string]interface{}{}
		content, changed, err := l.revisedContent(sub.Content, ch)
		if err != nil {
			return err
		}
		if changed {
			updates["content"] = content
		}
		if ch.Date != nil && !ch.Date.IsZero() {
			updates["date"] = *ch.Date
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&sub).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("submission updated", zap.Uint("submission_id", id))
	return l.view(ctx, id)
}

// DeleteSubmission removes a submission and takes its points back from the owner.
func (l *Ledger) DeleteSubmission(ctx context.Context, id uint) error {
	var deleted models.Submission
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("submission %d: %w", id, ErrNotFound)
			}
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", deleted.UserID).
			UpdateColumn("total_points", gorm.Expr("total_points - ?", deleted.Points)).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Submission{}, deleted.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("submission %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.log.Info("submission deleted",
		zap.Uint("submission_id", deleted.ID),
		zap.Uint("user_id", deleted.UserID),
		zap.Int("points", deleted.Points),
	)
	return nil
}

// GetSubmission loads a single submission.
func (l *Ledger) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	var sub models.Submission
	if err := l.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &sub, nil
}

// ListSubmissions returns submissions newest first, each with its owner's name.
func (l *Ledger) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]models.SubmissionView, error) {
	q := l.withOwnerName(ctx).
		Order("submissions.created_at DESC").
		Order("submissions.id DESC")
	if t := strings.TrimSpace(f.Type); t != "" && t != "all" {
		q = q.Where("submissions.type = ?", t)
	}
	if f.UserID != 0 {
		q = q.Where("submissions.user_id = ?", f.UserID)
	}
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	views := []models.SubmissionView{}
	if err := q.Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// CheckDailySubmission returns the user's submission of type t on date, or nil when there is none.
func (l *Ledger) CheckDailySubmission(ctx context.Context, userID uint, t models.SubmissionType, date models.Date) (*models.Submission, error) {
	return findDaily(l.db.WithContext(ctx), userID, t, date)
}

func findDaily(tx *gorm.DB, userID uint, t models.SubmissionType, date models.Date) (*models.Submission, error) {
	var sub models.Submission
	err := tx.Where("user_id = ? AND type = ? AND date = ?", userID, string(t), date).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// withOwnerName joins the owner's name onto submissions at read time.
func (l *Ledger) withOwnerName(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx).
		Table("submissions").
		Select("submissions.*, users.name AS owner_name").
		Joins("LEFT JOIN users ON users.id = submissions.user_id")
}

func (l *Ledger) view(ctx context.Context, id uint) (*models.SubmissionView, error) {
	var views []models.SubmissionView
	if err := l.withOwnerName(ctx).Where("submissions.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	return &views[0], nil
}

// revisedContent applies an edit to the stored content.
//   - no new content and no image: unchanged
//   - new content only: stored as given
//   - image: merged into the new content, or into the stored content when none was given
func (l *Ledger) revisedContent(current string, ch SubmissionChanges) (string, bool, error) {
	hasContent := ch.Content != nil && *ch.Content != ""
	switch {
	case !hasContent && ch.ImageURL == "":
		return current, false, nil
	case ch.ImageURL == "":
		// kept as sent; plain text is not rewrapped as {"text": ...} on edit
		return *ch.Content, true, nil
	case hasContent:
		merged, err := l.mergeImage(*ch.Content, ch.ImageURL)
		return merged, err == nil, err
	default:
		merged, err := l.mergeImage(current, ch.ImageURL)
		return merged, err == nil, err
	}
}

func (l *Ledger) mergeImage(raw, imageURL string) (string, error) {
	merged, shape, err := attachImage(raw, imageURL)
	if err != nil {
		return "", fmt.Errorf("merge content: %w", err)
	}
	if shape == contentText {
		l.log.Debug("content is not a JSON object, wrapped as text")
	}
	return merged, nil
}
