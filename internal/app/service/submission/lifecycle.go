package submission

import (
	"context"
	"fmt"
	"strings"

	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/tool"
	types "github.com/fatflowers/sitecraft/pkg/types"
)

// UpdateStatus moves a lead forward. Setting the current status again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status types.SubmissionStatus, operator string) (*models.Submission, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if status.Before(current.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, current.Status, status)
	}
	if err := s.UpdateFields(ctx, id, map[string]any{models.ColStatus: status}, types.ChangeReasonStatusUpdate, operator); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateDeployment records project progress. An empty siteURL leaves the stored URL alone.
func (s *Service) UpdateDeployment(ctx context.Context, id int64, status types.DeploymentStatus, siteURL string, operator string) (*models.Submission, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	fields := map[string]any{models.ColDeploymentStatus: status}
	if u := strings.TrimSpace(siteURL); u != "" {
		fields[models.ColSiteURL] = u
	}
	if err := s.UpdateFields(ctx, id, fields, types.ChangeReasonDeploymentUpdate, operator); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

type GenerateTokensRequest struct {
	Kinds []types.TokenKind `json:"kinds" binding:"required,min=1,dive,oneof=setup_fee subscription"`
	// SetupFeeAmount overrides the configured fee for this customer, in minor units.
	SetupFeeAmount *int64 `json:"setup_fee_amount" binding:"omitempty,gt=0"`
}

// Tokens holds freshly generated capability tokens; empty means not regenerated.
type Tokens struct {
	SetupFee     string
	Subscription string
}

// GenerateTokens replaces the requested capability tokens with new random values.
func (s *Service) GenerateTokens(ctx context.Context, id int64, req *GenerateTokensRequest, operator string) (*models.Submission, *Tokens, error) {
	if req == nil || len(req.Kinds) == 0 {
		return nil, nil, fmt.Errorf("no token kinds requested")
	}
	if req.SetupFeeAmount != nil && *req.SetupFeeAmount <= 0 {
		return nil, nil, fmt.Errorf("setup fee amount must be positive")
	}

	tokens := &Tokens{}
	fields := map[string]any{}
	for _, kind := range req.Kinds {
		token, err := tool.GenerateToken()
		if err != nil {
			return nil, nil, err
		}
		switch kind {
		case types.TokenKindSetupFee:
			tokens.SetupFee = token
			fields[models.ColSetupFeeToken] = token
		case types.TokenKindSubscription:
			tokens.Subscription = token
			fields[models.ColSubscriptionToken] = token
		default:
			return nil, nil, fmt.Errorf("unknown token kind %q", kind)
		}
	}
	if req.SetupFeeAmount != nil {
		fields[models.ColSetupFeeAmount] = *req.SetupFeeAmount
	}

	// Token values never reach the audit log.
	logged := map[string]any{}
	for k, v := range fields {
		if k == models.ColSetupFeeToken || k == models.ColSubscriptionToken {
			v = "<regenerated>"
		}
		logged[k] = v
	}
	if err := s.updateFieldsLogged(ctx, id, fields, logged, types.ChangeReasonTokenGenerated, operator); err != nil {
		return nil, nil, err
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return m, tokens, nil
}
