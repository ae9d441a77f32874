package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/lecture-feedback-backend/internal/data/repos"
	types "github.com/yungbote/lecture-feedback-backend/internal/domain"
	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/observability"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/dbctx"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

const tracerName = "lecture-feedback/services"

// GenerationConfig tunes GenerateSuggestions.
type GenerationConfig struct {
	// Sections need at least this many open reactions to be regenerated.
	MinReactions int
	// Upper bound on concurrent generator calls.
	Concurrency int
	// allow, skip or supersede.
	DuplicatePolicy string
	// Per-section generator deadline; zero means none.
	CallTimeout time.Duration
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.MinReactions < 0 {
		c.MinReactions = 0
	}
	if c.Concurrency < 1 {
		c.Concurrency = 4
	}
	if strings.TrimSpace(c.DuplicatePolicy) == "" {
		c.DuplicatePolicy = domainagg.DuplicateAllow
	}
	return c
}

// SectionFailure reports one section the generator could not produce text for.
type SectionFailure struct {
	SectionID uuid.UUID           `json:"sectionId"`
	Code      domainagg.ErrorCode `json:"code"`
	Message   string              `json:"message"`
}

type GenerationResult struct {
	RunID              uuid.UUID           `json:"runId"`
	LectureID          uuid.UUID           `json:"lectureId"`
	Generator          string              `json:"generator"`
	CreatedSuggestions []*types.Suggestion `json:"createdSuggestions"`
	Failures           []SectionFailure    `json:"failures"`
	Duplicates         []uuid.UUID         `json:"duplicates"`
	Skipped            []uuid.UUID         `json:"skipped"`
	Superseded         []uuid.UUID         `json:"superseded"`
}

// ResolutionService is the Resolution Engine facade. Realtime events are
// published only after the aggregate transaction committed.
type ResolutionService interface {
	Approve(ctx context.Context, suggestionID uuid.UUID) (domainagg.ApproveResult, error)
	ApproveMany(ctx context.Context, suggestionIDs []uuid.UUID) (domainagg.ApproveManyResult, error)
	Reject(ctx context.Context, suggestionID uuid.UUID) (domainagg.RejectResult, error)
	GenerateSuggestions(ctx context.Context, lectureID uuid.UUID) (*GenerationResult, error)
	ListGenerationRuns(ctx context.Context, lectureID uuid.UUID) ([]*types.GenerationRun, error)
}

type ResolutionServiceDeps struct {
	Log         *logger.Logger
	Lectures    repos.LectureRepo
	Reactions   repos.ReactionRepo
	Suggestions repos.SuggestionRepo
	Runs        repos.GenerationRunRepo
	Resolution  domainagg.ResolutionAggregate
	Feedback    domainagg.FeedbackAggregate
	Generator   SuggestionGenerator
	Notify      LectureNotifier
	Config      GenerationConfig
}

type resolutionService struct {
	log  *logger.Logger
	deps ResolutionServiceDeps
	cfg  GenerationConfig
}

func NewResolutionService(deps ResolutionServiceDeps) ResolutionService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.Generator == nil {
		deps.Generator = NewTemplateGenerator()
	}
	return &resolutionService{
		log:  log.With("service", "ResolutionService"),
		deps: deps,
		cfg:  deps.Config.withDefaults(),
	}
}

func (s *resolutionService) Approve(ctx context.Context, suggestionID uuid.UUID) (domainagg.ApproveResult, error) {
	res, err := s.deps.Resolution.Approve(ctx, suggestionID)
	if err != nil {
		return res, err
	}
	s.log.Info("suggestion approved",
		"suggestion_id", suggestionID,
		"lecture_id", res.NewLecture.ID,
		"version", res.NewLecture.Version,
		"reactions_resolved", res.ReactionsResolved,
	)
	if s.deps.Notify != nil {
		s.deps.Notify.SuggestionAccepted(res.NewLecture, res.Suggestion)
		s.deps.Notify.LectureVersionCreated(res.NewLecture, res.ParentLectureID)
	}
	return res, nil
}

func (s *resolutionService) ApproveMany(ctx context.Context, suggestionIDs []uuid.UUID) (domainagg.ApproveManyResult, error) {
	res, err := s.deps.Resolution.ApproveMany(ctx, suggestionIDs)
	if err != nil {
		return res, err
	}
	s.log.Info("suggestions approved", "count", len(res.Suggestions), "lecture_id", res.NewLecture.ID, "version", res.NewLecture.Version)
	if s.deps.Notify != nil {
		parent := res.ParentLectureID
		for i, v := range res.Versions {
			s.deps.Notify.SuggestionAccepted(v, res.Suggestions[i])
			s.deps.Notify.LectureVersionCreated(v, parent)
			parent = v.ID
		}
	}
	return res, nil
}

func (s *resolutionService) Reject(ctx context.Context, suggestionID uuid.UUID) (domainagg.RejectResult, error) {
	res, err := s.deps.Resolution.Reject(ctx, suggestionID)
	if err != nil {
		return res, err
	}
	s.log.Info("suggestion rejected", "suggestion_id", suggestionID, "reactions_resolved", res.ReactionsResolved)
	if s.deps.Notify != nil {
		if lec, lerr := s.deps.Lectures.GetByID(dbctx.Context{Ctx: ctx}, res.Suggestion.LectureID); lerr == nil {
			s.deps.Notify.SuggestionRejected(lec, res.Suggestion)
		}
	}
	return res, nil
}

// GenerateSuggestions asks the generator for every eligible section of a
// current lecture version. Generator failures are reported per section and
// never abort the batch.
func (s *resolutionService) GenerateSuggestions(ctx context.Context, lectureID uuid.UUID) (*GenerationResult, error) {
	const op = "Resolution.GenerateSuggestions"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("lecture.id", lectureID.String()))

	out, err := s.generate(ctx, op, lectureID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domainagg.CodeOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("generation.created", len(out.CreatedSuggestions)),
		attribute.Int("generation.failed", len(out.Failures)),
		attribute.Int("generation.skipped", len(out.Skipped)),
	)
	return out, nil
}

func (s *resolutionService) generate(ctx context.Context, op string, lectureID uuid.UUID) (*GenerationResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	lec, err := s.deps.Lectures.GetByID(dbc, lectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if lec == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "lecture not found: %s", lectureID)
	}
	if !lec.IsCurrent {
		return nil, domainagg.Errorf(domainagg.CodeInvalidTarget, op, "lecture %s is not the current version", lectureID)
	}

	counts, err := s.deps.Reactions.CountUnaddressedBySection(dbc, lec.ID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	open := false
	reactions, err := s.deps.Reactions.List(dbc, repos.ReactionFilter{LectureID: &lec.ID, Addressed: &open})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	bySection := map[uuid.UUID][]*types.Reaction{}
	for _, r := range reactions {
		bySection[r.SectionID] = append(bySection[r.SectionID], r)
	}

	pending := map[uuid.UUID]bool{}
	if s.cfg.DuplicatePolicy == domainagg.DuplicateSkip {
		existing, err := s.deps.Suggestions.List(dbc, repos.SuggestionFilter{LectureID: &lec.ID, Status: types.SuggestionPending})
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		for _, sug := range existing {
			pending[sug.SectionID] = true
		}
	}

	out := &GenerationResult{
		RunID:              uuid.New(),
		LectureID:          lec.ID,
		Generator:          s.deps.Generator.Name(),
		CreatedSuggestions: []*types.Suggestion{},
		Failures:           []SectionFailure{},
	}
	var targets []types.Section
	for _, sec := range lec.Sections {
		if counts[sec.ID] < int64(s.cfg.MinReactions) {
			continue
		}
		if pending[sec.ID] {
			out.Skipped = append(out.Skipped, sec.ID)
			continue
		}
		targets = append(targets, sec)
	}

	texts, failures := s.callGenerator(ctx, op, lec, targets, bySection)
	out.Failures = failures

	entries := make([]domainagg.SuggestionEntry, 0, len(targets))
	for i, sec := range targets {
		if texts[i] != "" {
			entries = append(entries, domainagg.SuggestionEntry{SectionID: sec.ID, SuggestedText: texts[i]})
		}
	}
	if len(entries) > 0 {
		res, err := s.deps.Feedback.AddSuggestions(ctx, domainagg.AddSuggestionsInput{
			LectureID:       lec.ID,
			Entries:         entries,
			GenerationRunID: &out.RunID,
			DuplicatePolicy: s.cfg.DuplicatePolicy,
		})
		if err != nil {
			return nil, err
		}
		out.CreatedSuggestions = res.Suggestions
		out.Duplicates = res.Duplicates
		out.Skipped = append(out.Skipped, res.Skipped...)
		out.Superseded = res.Superseded
	}

	s.recordRun(ctx, lec, len(targets), out)
	m := observability.Current()
	m.AddGenerationOutcome("created", len(out.CreatedSuggestions))
	m.AddGenerationOutcome("failed", len(out.Failures))
	m.AddGenerationOutcome("skipped", len(out.Skipped))

	s.log.Info("suggestions generated",
		"lecture_id", lec.ID,
		"generator", out.Generator,
		"requested", len(targets),
		"created", len(out.CreatedSuggestions),
		"failed", len(out.Failures),
		"skipped", len(out.Skipped),
	)
	if s.deps.Notify != nil {
		s.deps.Notify.SuggestionsGenerated(lec, out)
	}
	return out, nil
}

// callGenerator fans out one call per target, bounded by cfg.Concurrency.
// texts[i] is empty exactly when targets[i] failed.
func (s *resolutionService) callGenerator(ctx context.Context, op string, lec *types.Lecture, targets []types.Section, bySection map[uuid.UUID][]*types.Reaction) ([]string, []SectionFailure) {
	texts := make([]string, len(targets))
	errs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, sec := range targets {
		i, sec := i, sec
		g.Go(func() error {
			callCtx, cancel := gctx, context.CancelFunc(func() {})
			if s.cfg.CallTimeout > 0 {
				callCtx, cancel = context.WithTimeout(gctx, s.cfg.CallTimeout)
			}
			defer cancel()
			text, err := s.deps.Generator.Generate(callCtx, GenerationRequest{
				LectureTitle: lec.Title,
				SectionOrder: sec.Order,
				SectionText:  sec.Text,
				Reactions:    bySection[sec.ID],
			})
			if err == nil && strings.TrimSpace(text) == "" {
				err = fmt.Errorf("generator returned empty text")
			}
			if err != nil {
				errs[i] = err
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()

	var failures []SectionFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		wrapped := domainagg.Wrap(domainagg.CodeUpstreamFailure, op, err)
		s.log.Warn("suggestion generation failed for section", "lecture_id", lec.ID, "section_id", targets[i].ID, "error", err)
		failures = append(failures, SectionFailure{
			SectionID: targets[i].ID,
			Code:      domainagg.CodeOf(wrapped),
			Message:   err.Error(),
		})
	}
	if failures == nil {
		failures = []SectionFailure{}
	}
	return texts, failures
}

func (s *resolutionService) recordRun(ctx context.Context, lec *types.Lecture, requested int, out *GenerationResult) {
	if s.deps.Runs == nil {
		return
	}
	run := &types.GenerationRun{
		ID:         out.RunID,
		LectureID:  lec.ID,
		Policy:     s.cfg.DuplicatePolicy,
		Requested:  requested,
		Created:    len(out.CreatedSuggestions),
		Failures:   jsonColumn(out.Failures),
		Skipped:    jsonColumn(out.Skipped),
		Duplicates: jsonColumn(out.Duplicates),
	}
	if err := s.deps.Runs.Create(dbctx.Context{Ctx: ctx}, run); err != nil {
		s.log.Warn("failed to record generation run", "run_id", run.ID, "error", err)
	}
}

func jsonColumn(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func (s *resolutionService) ListGenerationRuns(ctx context.Context, lectureID uuid.UUID) ([]*types.GenerationRun, error) {
	const op = "Resolution.ListGenerationRuns"
	if s.deps.Runs == nil {
		return []*types.GenerationRun{}, nil
	}
	out, err := s.deps.Runs.ListByLecture(dbctx.Context{Ctx: ctx}, lectureID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}
