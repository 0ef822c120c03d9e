package submission

import (
	"context"
	"fmt"
	"strings"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/tool"
)

func (s *Service) AddNote(ctx context.Context, submissionID int64, author, body string) (*models.SubmissionNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("note body is empty")
	}
	if _, err := s.Get(ctx, submissionID); err != nil {
		return nil, err
	}
	note := &models.SubmissionNote{
		ID:           tool.GenerateUUIDV7(),
		SubmissionID: submissionID,
		Author:       author,
		Body:         body,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// ListNotes returns notes newest first.
func (s *Service) ListNotes(ctx context.Context, submissionID int64) ([]*models.SubmissionNote, error) {
	var notes []*models.SubmissionNote
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at desc").Order("id desc").
		Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *Service) DeleteNote(ctx context.Context, noteID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", noteID).Delete(&models.SubmissionNote{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
