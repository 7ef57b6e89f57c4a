package campaign

import (
	"context"

	"go.uber.org/zap"

	"filmscope/internal/logging"
	"filmscope/internal/metrics"
)

// Repository persists campaigns. Create assigns the ID and timestamps.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	Get(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context, filter Filter) ([]Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id string) error
}

// User-facing notification messages
const (
	MsgCreated = "Campaign created!"
	MsgUpdated = "Campaign updated!"
	MsgDeleted = "Campaign deleted."
)

// Service coordinates validation, persistence and metrics for campaigns
type Service struct {
	repo    Repository
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewService creates a campaign service. reg may be nil.
func NewService(repo Repository, reg *metrics.Registry) *Service {
	return &Service{
		repo:    repo,
		metrics: reg,
		logger:  logging.Named("campaign"),
	}
}

// Save creates c when it has no ID and updates it otherwise. It returns the
// stored campaign and the message to show the user.
func (s *Service) Save(ctx context.Context, c Campaign) (*Campaign, string, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, "", err
	}

	if c.ID == "" {
		err := s.repo.Create(ctx, &c)
		s.metrics.ObserveCampaignOp("create", err)
		if err != nil {
			return nil, "", err
		}
		s.logger.Info("campaign created", zap.String("id", c.ID), zap.String("platform", string(c.Platform)))
		return &c, MsgCreated, nil
	}

	err := s.repo.Update(ctx, &c)
	s.metrics.ObserveCampaignOp("update", err)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("campaign updated", zap.String("id", c.ID))
	return &c, MsgUpdated, nil
}

// Get returns a single campaign
func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	s.metrics.ObserveCampaignOp("get", err)
	return c, err
}

// Delete removes a campaign
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveCampaignOp("delete", err)
	if err != nil {
		return "", err
	}
	s.logger.Info("campaign deleted", zap.String("id", id))
	return MsgDeleted, nil
}

// List returns campaigns newest first
func (s *Service) List(ctx context.Context, filter Filter) ([]Campaign, error) {
	out, err := s.repo.List(ctx, filter)
	s.metrics.ObserveCampaignOp("list", err)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Campaign{}
	}
	return out, nil
}

// Stats summarizes every stored campaign
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}
	return Summarize(all), nil
}
