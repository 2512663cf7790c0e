package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/seqr/internal/detect"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage"
)

// ServiceConfig is the configuration for the validate service.
type ServiceConfig struct {
	Repository storage.Repository
	Detector   detect.Detector
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Detector == nil {
		return fmt.Errorf("detector is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service checks stored sequences for problems that would break a run.
type Service struct {
	repo     storage.Repository
	detector detect.Detector
	logger   log.Logger
}

// NewService creates a new validate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		detector: cfg.Detector,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the validate request parameters.
type Request struct {
	// SequenceName limits validation to a single sequence. Empty validates
	// every stored sequence.
	SequenceName string
}

// Run validates sequences and reports one check result per finding.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	sequences, err := s.sequences(ctx, req)
	if err != nil {
		return nil, err
	}

	loaded := map[string]bool{}
	for _, name := range s.detector.Templates() {
		loaded[name] = true
	}

	results := []model.CheckResult{}
	for _, seq := range sequences {
		results = append(results, s.checkDefinition(seq)...)

		positionResults, err := s.checkPositions(ctx, seq)
		if err != nil {
			return nil, err
		}
		results = append(results, positionResults...)

		results = append(results, s.checkTemplates(seq, loaded)...)
	}

	s.logger.Debugf("Validated %d sequences with %d findings", len(sequences), len(results))
	return results, nil
}

func (s *Service) sequences(ctx context.Context, req Request) ([]model.Sequence, error) {
	if req.SequenceName != "" {
		seq, err := s.repo.GetSequence(ctx, req.SequenceName)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, fmt.Errorf("sequence not found: %s: %w", req.SequenceName, model.ErrNotFound)
			}
			return nil, fmt.Errorf("could not get sequence: %w", err)
		}
		return []model.Sequence{*seq}, nil
	}

	sequences, err := s.repo.ListSequences(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sequences: %w", err)
	}
	return sequences, nil
}

func (s *Service) checkDefinition(seq model.Sequence) []model.CheckResult {
	results := []model.CheckResult{}

	if err := seq.Validate(); err != nil {
		results = append(results, model.CheckResult{
			ID:      seq.Name + "/definition",
			Message: err.Error(),
			Status:  model.CheckStatusError,
		})
		return results
	}

	results = append(results, model.CheckResult{
		ID:      seq.Name + "/definition",
		Message: fmt.Sprintf("%d actions", len(seq.Actions)),
		Status:  model.CheckStatusOK,
	})

	if seq.Loop && seq.StepDelay == 0 {
		results = append(results, model.CheckResult{
			ID:      seq.Name + "/loop",
			Message: "loops without a step delay",
			Status:  model.CheckStatusWarning,
		})
	}

	return results
}

func (s *Service) checkPositions(ctx context.Context, seq model.Sequence) ([]model.CheckResult, error) {
	names := seq.PositionNames()
	if len(names) == 0 {
		return nil, nil
	}

	missing := []string{}
	for _, name := range names {
		_, err := s.repo.GetPosition(ctx, name)
		if errors.Is(err, model.ErrNotFound) {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not check position %q: %w", name, err)
		}
	}

	if len(missing) > 0 {
		return []model.CheckResult{{
			ID:      seq.Name + "/positions",
			Message: "missing positions: " + strings.Join(missing, ", "),
			Status:  model.CheckStatusError,
		}}, nil
	}

	return []model.CheckResult{{
		ID:      seq.Name + "/positions",
		Message: fmt.Sprintf("all %d referenced positions exist", len(names)),
		Status:  model.CheckStatusOK,
	}}, nil
}

func (s *Service) checkTemplates(seq model.Sequence, loaded map[string]bool) []model.CheckResult {
	names := seq.TemplateNames()
	usesAll := false
	for _, a := range seq.Actions {
		if a.TemplateSearch != nil && a.TemplateSearch.AllTemplates {
			usesAll = true
			break
		}
	}
	if len(names) == 0 && !usesAll {
		return nil
	}

	missing := []string{}
	for _, name := range names {
		if !loaded[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return []model.CheckResult{{
			ID:      seq.Name + "/templates",
			Message: "templates not loaded: " + strings.Join(missing, ", "),
			Status:  model.CheckStatusError,
		}}
	}

	if usesAll && len(loaded) == 0 {
		return []model.CheckResult{{
			ID:      seq.Name + "/templates",
			Message: "searches all templates but none are loaded",
			Status:  model.CheckStatusError,
		}}
	}

	return []model.CheckResult{{
		ID:      seq.Name + "/templates",
		Message: "all referenced templates are loaded",
		Status:  model.CheckStatusOK,
	}}
}
