// Package location implements the core of the community filming-location
// subsystem: resolving timestamps to shots, recording reputation-weighted
// ratings, and driving the estimate confirmation state machine.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scenepin/scenepin/internal/domain"
	"github.com/scenepin/scenepin/internal/geocode"
	"github.com/scenepin/scenepin/internal/repository"
)

// Shots created lazily for uncovered timestamps span two seconds and carry
// this label so they are distinguishable from seeded shots.
const (
	userShotSpan  = 2
	userShotLabel = "User submitted shot"
)

const geocodeTimeout = 3 * time.Second

// Service executes estimate and rating submissions, each as a single
// transaction against the store.
type Service struct {
	pool     *pgxpool.Pool
	repo     *repository.Repository
	geocoder geocode.Client
	logger   *log.Logger
}

// NewService wires the location service to its collaborators. A nil geocoder
// disables address enrichment.
func NewService(pool *pgxpool.Pool, repo *repository.Repository, geocoder geocode.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if geocoder == nil {
		geocoder = geocode.Disabled()
	}
	return &Service{pool: pool, repo: repo, geocoder: geocoder, logger: logger}
}

// SubmitRatingInput is the validated payload of one rating submission.
type SubmitRatingInput struct {
	EstimateID string
	Handle     string
	Score      int
	Comment    *string
}

// RatingResult reports the recomputed statistics after a rating submission.
type RatingResult struct {
	Score       float64
	Weighted    float64
	RatingCount int64
	Status      domain.EstimateStatus
	Inserted    bool
}

// SubmitRating records or overwrites the caller's vote on an estimate,
// recomputes the estimate's cumulative weighted score, and applies the
// confirmation state machine. All steps run in one transaction: any failure
// leaves score, status, and reputation untouched.
func (s *Service) SubmitRating(ctx context.Context, in SubmitRatingInput) (RatingResult, error) {
	if strings.TrimSpace(in.Handle) == "" {
		return RatingResult{}, ErrUnauthenticated
	}
	if in.Score != -1 && in.Score != 1 {
		return RatingResult{}, invalidInput("score must be -1 or 1")
	}
	if _, err := uuid.Parse(in.EstimateID); err != nil {
		return RatingResult{}, invalidInput("estimateId must be a valid UUID")
	}

	var result RatingResult
	err := s.inTx(ctx, func(repo *repository.Repository) error {
		rater, err := repo.Users.GetOrCreateByHandle(ctx, strings.TrimSpace(in.Handle))
		if err != nil {
			return err
		}

		// The row lock serializes concurrent ratings on this estimate:
		// without it a second transaction could evaluate the state machine
		// against a stale status (granting the author's bonus twice) or
		// overwrite the score with a sum missing a committed vote.
		est, err := repo.Estimates.GetByIDForUpdate(ctx, in.EstimateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Weight is captured now and stored with the vote; later reputation
		// changes never reweight it.
		_, inserted, err := repo.Ratings.Upsert(ctx, repository.RatingUpsertParams{
			EstimateID: est.ID,
			UserID:     rater.ID,
			Score:      in.Score,
			Weight:     VoteWeight(rater.Reputation),
			Comment:    in.Comment,
		})
		if err != nil {
			return err
		}

		summary, err := repo.Ratings.Summarize(ctx, est.ID)
		if err != nil {
			return err
		}
		if err := repo.Estimates.SetScore(ctx, est.ID, summary.Weighted); err != nil {
			return err
		}

		status := est.Status
		switch EvaluateStatus(est.Status, summary) {
		case TransitionConfirm:
			confirmed, err := repo.Estimates.Confirm(ctx, est.ID)
			if err != nil {
				return err
			}
			status = confirmed.Status
			if est.CreatedBy != nil {
				if _, err := repo.Users.AddReputation(ctx, *est.CreatedBy, 1); err != nil {
					return err
				}
			}
		case TransitionReject:
			rejected, err := repo.Estimates.Reject(ctx, est.ID)
			if err != nil {
				return err
			}
			status = rejected.Status
		}

		result = RatingResult{
			Score:       summary.Weighted,
			Weighted:    summary.Weighted,
			RatingCount: summary.Count,
			Status:      status,
			Inserted:    inserted,
		}
		return nil
	})
	if err != nil {
		return RatingResult{}, err
	}
	return result, nil
}

// EvidenceInput is one evidence attachment of an estimate submission.
type EvidenceInput struct {
	SourceType string
	SourceURL  *string
	Note       *string
}

// SubmitEstimateInput is the validated payload of one estimate submission.
// W3W is an optional caller-supplied three-word address; when present it
// takes precedence over reverse-geocode enrichment.
type SubmitEstimateInput struct {
	Title      string
	Handle     string
	Timestamp  int
	Lat        float64
	Lng        float64
	W3W        *string
	Confidence string
	Evidence   []EvidenceInput
}

// EstimateResult reports the persisted estimate after submission.
type EstimateResult struct {
	EstimateID string
	ShotID     string
	Status     domain.EstimateStatus
	Address    *string
}

// SubmitEstimate resolves the film and covering shot for the submitted
// timestamp, creating a narrow shot when none covers it, then persists the
// estimate with its evidence in one transaction. Address enrichment happens
// before the transaction and degrades silently to "no value".
func (s *Service) SubmitEstimate(ctx context.Context, in SubmitEstimateInput) (EstimateResult, error) {
	if strings.TrimSpace(in.Handle) == "" {
		return EstimateResult{}, ErrUnauthenticated
	}
	if strings.TrimSpace(in.Title) == "" {
		return EstimateResult{}, invalidInput("title is required")
	}
	if in.Timestamp < 0 {
		return EstimateResult{}, invalidInput("timestamp must be non-negative")
	}
	if in.Lat < -90 || in.Lat > 90 {
		return EstimateResult{}, invalidInput("lat must be within [-90, 90]")
	}
	if in.Lng < -180 || in.Lng > 180 {
		return EstimateResult{}, invalidInput("lng must be within [-180, 180]")
	}
	confidence := domain.ConfidenceMedium
	if in.Confidence != "" {
		confidence = domain.Confidence(in.Confidence)
		if !domain.ValidConfidence(confidence) {
			return EstimateResult{}, invalidInput("confidence must be one of low, medium, high")
		}
	}
	for _, ev := range in.Evidence {
		if strings.TrimSpace(ev.SourceType) == "" {
			return EstimateResult{}, invalidInput("evidence sourceType is required")
		}
	}

	var address *string
	if in.W3W != nil && strings.TrimSpace(*in.W3W) != "" {
		addr := "///" + strings.TrimLeft(strings.TrimSpace(*in.W3W), "/")
		address = &addr
	} else {
		address = s.lookupAddress(ctx, in.Lat, in.Lng)
	}

	var result EstimateResult
	err := s.inTx(ctx, func(repo *repository.Repository) error {
		film, err := repo.Films.GetByTitle(ctx, strings.TrimSpace(in.Title))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		author, err := repo.Users.GetOrCreateByHandle(ctx, strings.TrimSpace(in.Handle))
		if err != nil {
			return err
		}

		shot, err := s.resolveShot(ctx, repo, film.ID, in.Timestamp)
		if err != nil {
			return err
		}

		est, err := repo.Estimates.Create(ctx, repository.EstimateCreateParams{
			ShotID:     shot.ID,
			Lat:        in.Lat,
			Lng:        in.Lng,
			Address:    address,
			Confidence: confidence,
			CreatedBy:  &author.ID,
		})
		if err != nil {
			return err
		}

		for _, ev := range in.Evidence {
			if _, err := repo.Estimates.InsertEvidence(ctx, repository.EvidenceCreateParams{
				EstimateID: est.ID,
				SourceType: strings.TrimSpace(ev.SourceType),
				SourceURL:  ev.SourceURL,
				Note:       ev.Note,
			}); err != nil {
				return err
			}
		}

		result = EstimateResult{
			EstimateID: est.ID,
			ShotID:     shot.ID,
			Status:     est.Status,
			Address:    est.Address,
		}
		return nil
	})
	if err != nil {
		return EstimateResult{}, err
	}
	return result, nil
}

// resolveShot finds the narrowest shot covering t, creating a two-second
// user shot when none exists. Two racing submissions for the same uncovered
// timestamp may each create a shot; that duplication is tolerated rather
// than serialized.
func (s *Service) resolveShot(ctx context.Context, repo *repository.Repository, filmID string, t int) (domain.Shot, error) {
	shot, err := repo.Shots.FindCovering(ctx, filmID, t)
	if err == nil {
		return shot, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Shot{}, err
	}
	return repo.Shots.Create(ctx, repository.ShotCreateParams{
		FilmID:         filmID,
		TimestampStart: t,
		TimestampEnd:   t + userShotSpan,
		Label:          userShotLabel,
	})
}

// EstimateView is the read-path payload: an estimate, its shot, attached
// evidence, and current rating statistics.
type EstimateView struct {
	Estimate domain.Estimate
	Shot     domain.Shot
	Evidence []domain.Evidence
	Summary  domain.RatingSummary
}

// LookupEstimate resolves a film title and timestamp to the best covering
// non-rejected estimate. The read path never creates shots.
func (s *Service) LookupEstimate(ctx context.Context, title string, timestamp int) (EstimateView, error) {
	if strings.TrimSpace(title) == "" {
		return EstimateView{}, invalidInput("title is required")
	}
	if timestamp < 0 {
		return EstimateView{}, invalidInput("timestamp must be non-negative")
	}

	film, err := s.repo.Films.GetByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return EstimateView{}, ErrNotFound
		}
		return EstimateView{}, err
	}

	est, shot, err := s.repo.Estimates.FindForTimestamp(ctx, film.ID, timestamp)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return EstimateView{}, ErrNotFound
		}
		return EstimateView{}, err
	}

	return s.buildView(ctx, est, shot)
}

// GetEstimate returns the detail view of a single estimate by identifier.
func (s *Service) GetEstimate(ctx context.Context, estimateID string) (EstimateView, error) {
	if _, err := uuid.Parse(estimateID); err != nil {
		return EstimateView{}, invalidInput("estimateId must be a valid UUID")
	}

	est, err := s.repo.Estimates.GetByID(ctx, estimateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return EstimateView{}, ErrNotFound
		}
		return EstimateView{}, err
	}

	shot, err := s.repo.Shots.GetByID(ctx, est.ShotID)
	if err != nil {
		return EstimateView{}, err
	}

	return s.buildView(ctx, est, shot)
}

func (s *Service) buildView(ctx context.Context, est domain.Estimate, shot domain.Shot) (EstimateView, error) {
	evidence, err := s.repo.Estimates.ListEvidence(ctx, est.ID)
	if err != nil {
		return EstimateView{}, err
	}
	summary, err := s.repo.Ratings.Summarize(ctx, est.ID)
	if err != nil {
		return EstimateView{}, err
	}
	return EstimateView{Estimate: est, Shot: shot, Evidence: evidence, Summary: summary}, nil
}

// lookupAddress asks the geocoder for an address-like string. Failures are
// an absent value, never a request failure.
func (s *Service) lookupAddress(ctx context.Context, lat, lng float64) *string {
	lookupCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	address, err := s.geocoder.ReverseLookup(lookupCtx, lat, lng)
	if err != nil {
		if !errors.Is(err, geocode.ErrNotFound) {
			s.logger.Printf("geocode lookup failed for (%f, %f): %v", lat, lng, err)
		}
		return nil
	}
	return &address
}

func (s *Service) inTx(ctx context.Context, fn func(repo *repository.Repository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(s.repo.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
