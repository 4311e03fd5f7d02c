package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/2beens/liftprogress/internal/dashboard"
	"github.com/2beens/liftprogress/internal/progress"
	"github.com/2beens/liftprogress/internal/telemetry/metrics"
	"github.com/2beens/liftprogress/internal/telemetry/tracing"
	"github.com/2beens/liftprogress/internal/trello"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	BoardName         = "Lift Progress"
	ExercisesListName = "Exercises"
	WorkoutsListName  = "Workouts"
	RecordsListName   = "Personal Records"
)

const (
	dashboardCacheKey = "dashboard"
	cacheSize         = 2 * 1024 * 1024
)

var (
	ErrEmptyExerciseName = errors.New("exercise name is empty")
	ErrInvalidWorkout    = errors.New("load, reps and sets must be positive")

	cardDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type cardStore interface {
	ListBoards(ctx context.Context) ([]trello.Board, error)
	CreateBoard(ctx context.Context, name string) (*trello.Board, error)
	ListLists(ctx context.Context, boardID string) ([]trello.List, error)
	CreateList(ctx context.Context, boardID, name string) (*trello.List, error)
	ListCards(ctx context.Context, listID string) ([]trello.Card, error)
	CreateCard(ctx context.Context, listID, name, desc string) (*trello.Card, error)
	UpdateCardDesc(ctx context.Context, cardID, desc string) error
	MoveCard(ctx context.Context, cardID, targetListID string) error
}

// BoardSetup holds the resolved external ids of the board and its three
// lists. Everything downstream receives these explicitly.
type BoardSetup struct {
	BoardID string  `json:"boardId"`
	Lists   ListIDs `json:"lists"`
}

type ListIDs struct {
	Exercises string `json:"exercises"`
	Workouts  string `json:"workouts"`
	Records   string `json:"records"`
}

type Service struct {
	store             cardStore
	metrics           *metrics.Manager
	cache             *freecache.Cache
	dashboardCacheTTL time.Duration
	now               func() time.Time

	// resolved board/list ids; the store has no transactions, so the worst
	// case of two concurrent bootstraps is a duplicate find
	mu    sync.Mutex
	setup *BoardSetup
}

func NewService(store cardStore, metricsManager *metrics.Manager, dashboardCacheTTL time.Duration) *Service {
	return &Service{
		store:             store,
		metrics:           metricsManager,
		cache:             freecache.NewCache(cacheSize),
		dashboardCacheTTL: dashboardCacheTTL,
		now:               time.Now,
	}
}

// Bootstrap is an idempotent upsert: board and lists are found or created,
// never duplicated on the happy path. Resolved ids are kept for the process
// lifetime.
func (s *Service) Bootstrap(ctx context.Context) (_ *BoardSetup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.bootstrap")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setup != nil {
		return s.setup, nil
	}

	boardID, err := s.ensureBoard(ctx)
	if err != nil {
		return nil, err
	}

	lists, err := s.store.ListLists(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap board [%s]: %w", boardID, err)
	}
	listIDByName := make(map[string]string, len(lists))
	for _, l := range lists {
		listIDByName[l.Name] = l.ID
	}

	setup := &BoardSetup{BoardID: boardID}
	for _, target := range []struct {
		name string
		id   *string
	}{
		{ExercisesListName, &setup.Lists.Exercises},
		{WorkoutsListName, &setup.Lists.Workouts},
		{RecordsListName, &setup.Lists.Records},
	} {
		if id, ok := listIDByName[target.name]; ok {
			*target.id = id
			continue
		}
		created, err := s.store.CreateList(ctx, boardID, target.name)
		if err != nil {
			return nil, fmt.Errorf("bootstrap list [%s] on board [%s]: %w", target.name, boardID, err)
		}
		*target.id = created.ID
	}

	s.setup = setup
	log.Debugf("bootstrap done, board: %s", boardID)
	return setup, nil
}

func (s *Service) ensureBoard(ctx context.Context) (string, error) {
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %w", err)
	}
	for _, b := range boards {
		if b.Name == BoardName {
			return b.ID, nil
		}
	}

	board, err := s.store.CreateBoard(ctx, BoardName)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %w", err)
	}
	return board.ID, nil
}

func (s *Service) ListExercises(ctx context.Context) (_ []progress.ExerciseProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.listExercises")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	setup, err := s.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCards(ctx, setup.Lists.Exercises)
	if err != nil {
		return nil, err
	}

	exercises := make([]progress.ExerciseProgress, 0, len(cards))
	for _, card := range cards {
		exercises = append(exercises, decodeExerciseCard(card))
	}
	return exercises, nil
}

// GetOrCreateExercise finds the exercise card by case-insensitive name, or
// creates one holding an empty progress document.
func (s *Service) GetOrCreateExercise(ctx context.Context, exerciseName string) (_ *trello.Card, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.getOrCreateExercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	exerciseName = strings.TrimSpace(exerciseName)
	if exerciseName == "" {
		return nil, ErrEmptyExerciseName
	}
	span.SetAttributes(attribute.String("exercise.name", exerciseName))

	setup, err := s.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCards(ctx, setup.Lists.Exercises)
	if err != nil {
		return nil, err
	}
	for i, card := range cards {
		if strings.EqualFold(strings.TrimSpace(card.Name), exerciseName) {
			return &cards[i], nil
		}
	}

	card, err := s.store.CreateCard(
		ctx, setup.Lists.Exercises,
		exerciseName,
		progress.Encode(progress.ExerciseProgress{}),
	)
	if err != nil {
		return nil, fmt.Errorf("create exercise [%s]: %w", exerciseName, err)
	}

	log.Debugf("new exercise created: [%s] %s", exerciseName, card.ID)
	return card, nil
}

type WorkoutRequest struct {
	ExerciseName string                `json:"exerciseName"`
	Load         float64               `json:"load"`
	Reps         int                   `json:"reps"`
	Sets         int                   `json:"sets"`
	Series       []progress.WorkoutSet `json:"series,omitempty"`
}

type WorkoutResult struct {
	Exercise  progress.ExerciseProgress `json:"exercise"`
	IsRecord  bool                      `json:"isRecord"`
	DeltaLoad float64                   `json:"deltaLoad"`
}

// RecordWorkout runs the whole read-modify-write cycle for one workout:
// create the workout card, fold the workout into the exercise progress,
// write the progress back, and relocate the workout card to the records
// list when it set a personal record. The store has no transactions; a
// failure between the progress update and the move leaves the workout card
// in the workouts list, which is accepted.
func (s *Service) RecordWorkout(ctx context.Context, req WorkoutRequest) (_ *WorkoutResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.recordWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workout := progress.Workout{
		Date:   s.now().UTC().Format(progress.DateFormat),
		Load:   req.Load,
		Reps:   req.Reps,
		Sets:   req.Sets,
		Series: sanitizeSeries(req.Series),
	}
	if len(req.Series) > 0 && len(workout.Series) == 0 {
		return nil, fmt.Errorf("%w: series has no valid sets", ErrInvalidWorkout)
	}

	load, reps, sets := workout.TopSet()
	if !isPositiveFinite(load) || reps <= 0 {
		return nil, ErrInvalidWorkout
	}

	setup, err := s.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	exerciseCard, err := s.GetOrCreateExercise(ctx, req.ExerciseName)
	if err != nil {
		return nil, err
	}

	workoutCard, err := s.store.CreateCard(
		ctx, setup.Lists.Workouts,
		fmt.Sprintf("%s - %s", workout.Date, exerciseCard.Name),
		progress.FormatWorkoutDesc(exerciseCard.Name, load, reps, sets, workout.Date),
	)
	if err != nil {
		return nil, fmt.Errorf("create workout card in list [%s]: %w", setup.Lists.Workouts, err)
	}

	previous := decodeExerciseCard(*exerciseCard)
	eval := progress.Evaluate(previous, workout)

	if err := s.store.UpdateCardDesc(ctx, exerciseCard.ID, progress.Encode(eval.Updated)); err != nil {
		return nil, fmt.Errorf("update exercise card [%s]: %w", exerciseCard.ID, err)
	}

	if eval.IsRecord {
		if err := s.store.MoveCard(ctx, workoutCard.ID, setup.Lists.Records); err != nil {
			return nil, fmt.Errorf("move workout card [%s] to records list [%s]: %w",
				workoutCard.ID, setup.Lists.Records, err)
		}
		s.metrics.CounterPersonalRecords.Inc()
		log.Infof("new personal record: [%s] %.2fkg x %d", exerciseCard.Name, load, reps)
	}

	s.metrics.CounterWorkouts.Inc()
	s.cache.Del([]byte(dashboardCacheKey))

	return &WorkoutResult{
		Exercise:  eval.Updated,
		IsRecord:  eval.IsRecord,
		DeltaLoad: eval.DeltaLoad,
	}, nil
}

// Dashboard fetches the three lists concurrently, then hands the aggregator
// one consistent snapshot of them. The result is cached for a short while.
func (s *Service) Dashboard(ctx context.Context) (_ *dashboard.Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.dashboard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if cached, err := s.cache.Get([]byte(dashboardCacheKey)); err == nil {
		snapshot := &dashboard.Snapshot{}
		if unmarshalErr := json.Unmarshal(cached, snapshot); unmarshalErr == nil {
			log.Tracef("dashboard served from cache")
			return snapshot, nil
		} else {
			log.Errorf("failed to unmarshal cached dashboard: %s", unmarshalErr)
		}
	}

	setup, err := s.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	var (
		exerciseCards []trello.Card
		workoutCards  []trello.Card
		recordCards   []trello.Card
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		exerciseCards, err = s.store.ListCards(groupCtx, setup.Lists.Exercises)
		return err
	})
	group.Go(func() (err error) {
		workoutCards, err = s.store.ListCards(groupCtx, setup.Lists.Workouts)
		return err
	})
	group.Go(func() (err error) {
		recordCards, err = s.store.ListCards(groupCtx, setup.Lists.Records)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	exercises := make([]progress.ExerciseProgress, 0, len(exerciseCards))
	for _, card := range exerciseCards {
		exercises = append(exercises, decodeExerciseCard(card))
	}

	// workout and record card names both start with the workout date
	workoutDates := make([]string, 0, len(workoutCards)+len(recordCards))
	for _, card := range append(workoutCards, recordCards...) {
		if len(card.Name) < len(progress.DateFormat) {
			continue
		}
		date := card.Name[:len(progress.DateFormat)]
		if cardDateRe.MatchString(date) {
			workoutDates = append(workoutDates, date)
		}
	}

	records := make([]dashboard.RecordCard, 0, len(recordCards))
	for _, card := range recordCards {
		records = append(records, dashboard.RecordCard{
			Name:         card.Name,
			Desc:         card.Desc,
			LastActivity: card.DateLastActivity,
		})
	}

	snapshot := dashboard.Summarize(s.now(), exercises, workoutDates, records)

	if snapshotBytes, err := json.Marshal(snapshot); err != nil {
		log.Errorf("failed to marshal dashboard for cache: %s", err)
	} else if err := s.cache.Set(
		[]byte(dashboardCacheKey), snapshotBytes, int(s.dashboardCacheTTL.Seconds()),
	); err != nil {
		log.Errorf("failed to cache dashboard: %s", err)
	}

	return &snapshot, nil
}

func decodeExerciseCard(card trello.Card) progress.ExerciseProgress {
	p := progress.Decode(card.Desc)
	p.CardID = card.ID
	p.Name = card.Name
	return p
}

func sanitizeSeries(series []progress.WorkoutSet) []progress.WorkoutSet {
	var sanitized []progress.WorkoutSet
	for _, s := range series {
		if isPositiveFinite(s.Load) && s.Reps > 0 {
			sanitized = append(sanitized, s)
		}
	}
	return sanitized
}

func isPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
