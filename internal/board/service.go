// Package board is the state layer of the kanban application. It wraps the
// store with a read-through, optimistically updated board snapshot cache,
// reports every data operation as a Notice and broadcasts board events.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/metrics"
)

var (
	// ErrReorderFailed is returned by HandleDragEnd when a position write
	// failed. The board has been reloaded from the store by then.
	ErrReorderFailed = errors.New("board: reorder failed")
	// ErrInvalidMove is returned for drag events that reference items not on
	// the board.
	ErrInvalidMove = fmt.Errorf("board: invalid move: %w", domain.ErrInvalidInput)
)

// Store gives access to the board repositories.
type Store interface {
	Boards() domain.BoardRepository
	Columns() domain.ColumnRepository
	Cards() domain.CardRepository
	Tags() domain.TagRepository
	CardTags() domain.CardTagRepository
}

// Cache holds board snapshots and per-user board lists, shared by every
// server instance. Each entry has a version that changes on every write.
// Getters return the entry, nil on a miss, with its current version. Setters
// store only while the entry is still at the version the caller read, and
// report whether they did. Deletes always change the version.
type Cache interface {
	GetBoard(ctx context.Context, boardID uuid.UUID) (*domain.BoardDetail, int64, error)
	SetBoard(ctx context.Context, d *domain.BoardDetail, version int64) (bool, error)
	DeleteBoard(ctx context.Context, boardID uuid.UUID) error
	GetBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, int64, error)
	SetBoards(ctx context.Context, userID uuid.UUID, boards []*domain.Board, version int64) (bool, error)
	DeleteBoards(ctx context.Context, userID uuid.UUID) error
}

// noVersion never matches a cache version, so a set with it always fails.
const noVersion int64 = -1

// maxPatchAttempts bounds the compare-and-set retries of a snapshot patch.
// The snapshot is dropped when they run out.
const maxPatchAttempts = 3

// Publisher broadcasts board events to every session viewing the board.
type Publisher interface {
	PublishBoardEvent(ctx context.Context, ev Event) error
}

// Notifier delivers notices to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, n Notice) error
}

type Service struct {
	store   Store
	cache   Cache
	events  Publisher
	notify  Notifier
	metrics *metrics.Metrics
	sf      singleflight.Group
}

// NewService creates a Service. cache, events and notifier may be nil, which
// disables caching, broadcasting and notices respectively.
func NewService(store Store, cache Cache, events Publisher, notifier Notifier, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		events:  events,
		notify:  notifier,
		metrics: m,
	}
}

// ListBoards returns the user's boards, newest first.
func (s *Service) ListBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	version := noVersion
	if s.cache != nil {
		boards, v, err := s.cache.GetBoards(ctx, userID)
		switch {
		case err != nil:
			s.metrics.CacheLookup("error")
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("board: read board list cache")
		case boards != nil:
			s.metrics.CacheLookup("hit")
			return boards, nil
		default:
			s.metrics.CacheLookup("miss")
			version = v
		}
	}

	v, err, _ := s.sf.Do("boards:"+userID.String(), func() (any, error) {
		// Shared by every waiting caller, so it must outlive the first one.
		ctx := context.WithoutCancel(ctx)
		boards, err := s.store.Boards().List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			// A list changed since version was read is left to its writer.
			if _, err := s.cache.SetBoards(ctx, userID, boards, version); err != nil {
				log.Warn().Err(err).Str("user_id", userID.String()).Msg("board: write board list cache")
			}
		}
		return boards, nil
	})
	if err != nil {
		return nil, s.fail(ctx, userID, opListBoards, err)
	}
	return slices.Clone(v.([]*domain.Board)), nil
}

// GetBoard returns the board with its columns, cards and tags, serving the
// cached snapshot when there is one.
func (s *Service) GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	d, err := s.board(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opGetBoard, err, "board_id", boardID)
	}
	return d, nil
}

// CheckAccess returns nil if the user owns the board and domain.ErrNotFound
// otherwise. Unlike GetBoard it never notifies the user.
func (s *Service) CheckAccess(ctx context.Context, userID, boardID uuid.UUID) error {
	if d, _ := s.cachedBoard(ctx, userID, boardID); d != nil {
		return nil
	}
	if _, err := s.store.Boards().GetByID(ctx, userID, boardID); err != nil {
		return fmt.Errorf("board.CheckAccess: %w", err)
	}
	return nil
}

// RefreshBoard reloads the board from the store and replaces the snapshot.
func (s *Service) RefreshBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	d, err := s.reload(ctx, userID, boardID)
	if err != nil {
		return nil, s.fail(ctx, userID, opGetBoard, err, "board_id", boardID)
	}
	return d, nil
}

func (s *Service) board(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	d, _, err := s.versionedBoard(ctx, userID, boardID)
	return d, err
}

// versionedBoard returns the board and the snapshot version it corresponds
// to, or noVersion when no snapshot holds it.
func (s *Service) versionedBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, int64, error) {
	d, version := s.cachedBoard(ctx, userID, boardID)
	if d != nil {
		return d, version, nil
	}
	return s.load(ctx, userID, boardID, version)
}

// cachedBoard returns the snapshot, or nil, with the version read alongside.
func (s *Service) cachedBoard(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, int64) {
	if s.cache == nil {
		return nil, noVersion
	}
	d, version, err := s.cache.GetBoard(ctx, boardID)
	switch {
	case err != nil:
		s.metrics.CacheLookup("error")
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("board: read snapshot cache")
		return nil, noVersion
	case d == nil || d.UserID != userID:
		s.metrics.CacheLookup("miss")
		return nil, version
	}
	s.metrics.CacheLookup("hit")
	return d, version
}

func loadKey(userID, boardID uuid.UUID) string {
	return "board:" + userID.String() + ":" + boardID.String()
}

type loaded struct {
	detail  *domain.BoardDetail
	version int64
}

// load fetches the board from the store, coalescing concurrent loads of the
// same board, and stores the result as the snapshot unless the snapshot was
// written after version was read. That write may carry changes the fetch
// missed.
func (s *Service) load(ctx context.Context, userID, boardID uuid.UUID, version int64) (*domain.BoardDetail, int64, error) {
	v, err, _ := s.sf.Do(loadKey(userID, boardID), func() (any, error) {
		// Shared by every waiting caller, so it must outlive the first one.
		ctx := context.WithoutCancel(ctx)
		d, err := s.fetch(ctx, userID, boardID)
		if err != nil {
			return nil, err
		}
		next := noVersion
		if s.setSnapshot(ctx, d, version) {
			next = version + 1
		}
		return loaded{detail: d, version: next}, nil
	})
	if err != nil {
		return nil, noVersion, err
	}
	l := v.(loaded)
	return l.detail.Clone(), l.version, nil
}

// reload is load without joining a load that may have started before the
// caller's writes. The snapshot it replaces may hold state the store never
// accepted, so a snapshot that changed meanwhile is dropped, not kept.
func (s *Service) reload(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	s.sf.Forget(loadKey(userID, boardID))
	version := noVersion
	if s.cache != nil {
		_, v, err := s.cache.GetBoard(ctx, boardID)
		if err == nil {
			version = v
		}
	}
	d, next, err := s.load(ctx, userID, boardID, version)
	if err != nil {
		return nil, err
	}
	if next == noVersion {
		s.dropSnapshot(ctx, boardID)
	}
	return d, nil
}

func (s *Service) fetch(ctx context.Context, userID, boardID uuid.UUID) (*domain.BoardDetail, error) {
	b, err := s.store.Boards().GetByID(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	columns, err := s.store.Columns().ListByBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	var cards []*domain.Card
	if len(columns) > 0 {
		ids := make([]uuid.UUID, len(columns))
		for i, c := range columns {
			ids[i] = c.ID
		}
		if cards, err = s.store.Cards().ListByColumns(ctx, userID, ids); err != nil {
			return nil, err
		}
	}

	tags, err := s.store.Tags().ListByBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	var cardTags []*domain.CardTag
	if len(cards) > 0 {
		ids := make([]uuid.UUID, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		if cardTags, err = s.store.CardTags().ListByCards(ctx, userID, ids); err != nil {
			return nil, err
		}
	}

	return domain.AssembleBoard(b, columns, cards, tags, cardTags), nil
}

// ---------------------------------------------------------------------------
// Snapshot maintenance
// ---------------------------------------------------------------------------

// setSnapshot stores d if the snapshot is still at version and reports
// whether it did.
func (s *Service) setSnapshot(ctx context.Context, d *domain.BoardDetail, version int64) bool {
	if s.cache == nil {
		return false
	}
	stored, err := s.cache.SetBoard(ctx, d, version)
	if err != nil {
		log.Warn().Err(err).Str("board_id", d.ID.String()).Msg("board: write snapshot cache")
		return false
	}
	return stored
}

func (s *Service) dropSnapshot(ctx context.Context, boardID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteBoard(ctx, boardID); err != nil {
		log.Warn().Err(err).Str("board_id", boardID.String()).Msg("board: drop snapshot")
	}
}

// patchSnapshot applies fn to the cached snapshot of boardID and writes it
// back with a compare-and-set, retrying on a fresh copy when another writer
// got there first. fn may therefore run more than once. When fn reports that
// the snapshot no longer matches, or the retries run out, the snapshot is
// dropped so the next read reloads it. A missing snapshot is dropped too,
// which fails any load that read the store before this write.
func (s *Service) patchSnapshot(ctx context.Context, boardID uuid.UUID, fn func(d *domain.BoardDetail) bool) {
	if s.cache == nil {
		return
	}
	for range maxPatchAttempts {
		d, version, err := s.cache.GetBoard(ctx, boardID)
		if err != nil || d == nil || !fn(d) {
			break
		}
		stored, err := s.cache.SetBoard(ctx, d, version)
		if err != nil {
			log.Warn().Err(err).Str("board_id", boardID.String()).Msg("board: write snapshot cache")
			break
		}
		if stored {
			return
		}
	}
	s.dropSnapshot(ctx, boardID)
}

// patchBoardList is patchSnapshot for the user's board list.
func (s *Service) patchBoardList(ctx context.Context, userID uuid.UUID, fn func([]*domain.Board) []*domain.Board) {
	if s.cache == nil {
		return
	}
	for range maxPatchAttempts {
		boards, version, err := s.cache.GetBoards(ctx, userID)
		if err != nil || boards == nil {
			break
		}
		stored, err := s.cache.SetBoards(ctx, userID, fn(boards), version)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("board: write board list cache")
			break
		}
		if stored {
			return
		}
	}
	s.dropBoardList(ctx, userID)
}

func (s *Service) dropBoardList(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.DeleteBoards(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("board: drop board list")
	}
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBoardEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("board_id", ev.BoardID.String()).Str("type", string(ev.Type)).Msg("board: publish event")
	}
}

func (s *Service) notice(ctx context.Context, userID uuid.UUID, n Notice) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(ctx, userID, n); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("title", n.Title).Msg("board: deliver notice")
	}
}

func (s *Service) succeed(ctx context.Context, userID uuid.UUID, op operation) {
	s.metrics.Operation(op.name, true)
	if n, ok := op.success(); ok {
		s.notice(ctx, userID, n)
	}
}

// fail logs err, emits op's error notice and returns err wrapped with the
// operation name. Invalid input is returned as is, without a notice.
func (s *Service) fail(ctx context.Context, userID uuid.UUID, op operation, err error, fields ...any) error {
	wrapped := fmt.Errorf("board.%s: %w", op.name, err)
	if errors.Is(err, domain.ErrInvalidInput) {
		return wrapped
	}

	s.metrics.Operation(op.name, false)
	log.Error().Err(err).
		Str("operation", op.name).
		Str("user_id", userID.String()).
		Fields(fields).
		Msg("board: operation failed")
	s.notice(ctx, userID, op.failure())
	return wrapped
}

// boardOfColumn resolves the board a column belongs to.
func (s *Service) boardOfColumn(ctx context.Context, userID, columnID uuid.UUID) (uuid.UUID, error) {
	col, err := s.store.Columns().GetByID(ctx, userID, columnID)
	if err != nil {
		return uuid.Nil, err
	}
	return col.BoardID, nil
}
