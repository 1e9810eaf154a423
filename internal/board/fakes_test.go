package board_test

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	boards   map[uuid.UUID]domain.Board
	columns  map[uuid.UUID]domain.Column
	cards    map[uuid.UUID]domain.Card
	tags     map[uuid.UUID]domain.Tag
	cardTags map[[2]uuid.UUID]domain.CardTag

	// fetches counts GetByID calls on boards, i.e. full board loads.
	fetches int
	// fetchHook, when set, runs before every board GetByID with its context.
	fetchHook func(ctx context.Context) error
	// moveErr, when set, is consulted before every card Move.
	moveErr func(cardID uuid.UUID) error
	// positionErr, when set, is consulted before every column UpdatePosition.
	positionErr func(columnID uuid.UUID) error
	moves       []uuid.UUID
	createErr   error
}

func newMemStore() *memStore {
	return &memStore{
		boards:   make(map[uuid.UUID]domain.Board),
		columns:  make(map[uuid.UUID]domain.Column),
		cards:    make(map[uuid.UUID]domain.Card),
		tags:     make(map[uuid.UUID]domain.Tag),
		cardTags: make(map[[2]uuid.UUID]domain.CardTag),
	}
}

func (m *memStore) Boards() domain.BoardRepository     { return memBoards{m} }
func (m *memStore) Columns() domain.ColumnRepository   { return memColumns{m} }
func (m *memStore) Cards() domain.CardRepository       { return memCards{m} }
func (m *memStore) Tags() domain.TagRepository         { return memTags{m} }
func (m *memStore) CardTags() domain.CardTagRepository { return memCardTags{m} }

func (m *memStore) ownsBoard(userID, boardID uuid.UUID) bool {
	b, ok := m.boards[boardID]
	return ok && b.UserID == userID
}

func (m *memStore) ownsColumn(userID, columnID uuid.UUID) bool {
	c, ok := m.columns[columnID]
	return ok && m.ownsBoard(userID, c.BoardID)
}

func (m *memStore) ownsCard(userID, cardID uuid.UUID) bool {
	c, ok := m.cards[cardID]
	return ok && m.ownsColumn(userID, c.ColumnID)
}

func (m *memStore) cardPositions(columnID uuid.UUID) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, c := range m.cards {
		if c.ColumnID == columnID {
			out[c.Title] = c.Position
		}
	}
	return out
}

type memBoards struct{ m *memStore }

func (r memBoards) Create(_ context.Context, b *domain.Board) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createErr != nil {
		return r.m.createErr
	}
	r.m.boards[b.ID] = *b
	return nil
}

func (r memBoards) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Board, error) {
	if r.m.fetchHook != nil {
		if err := r.m.fetchHook(ctx); err != nil {
			return nil, err
		}
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.fetches++
	if !r.m.ownsBoard(userID, id) {
		return nil, domain.ErrNotFound
	}
	b := r.m.boards[id]
	return &b, nil
}

func (r memBoards) List(_ context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*domain.Board{}
	for _, b := range r.m.boards {
		if b.UserID == userID {
			out = append(out, &b)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Board) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memBoards) Update(_ context.Context, b *domain.Board) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsBoard(b.UserID, b.ID) {
		return domain.ErrNotFound
	}
	r.m.boards[b.ID] = *b
	return nil
}

func (r memBoards) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsBoard(userID, id) {
		return domain.ErrNotFound
	}
	delete(r.m.boards, id)
	return nil
}

type memColumns struct{ m *memStore }

func (r memColumns) Create(_ context.Context, userID uuid.UUID, c *domain.Column) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsBoard(userID, c.BoardID) {
		return domain.ErrNotFound
	}
	r.m.columns[c.ID] = *c
	return nil
}

func (r memColumns) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Column, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsColumn(userID, id) {
		return nil, domain.ErrNotFound
	}
	c := r.m.columns[id]
	return &c, nil
}

func (r memColumns) ListByBoard(_ context.Context, userID, boardID uuid.UUID) ([]*domain.Column, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*domain.Column{}
	for _, c := range r.m.columns {
		if c.BoardID == boardID && r.m.ownsBoard(userID, boardID) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Column) int { return cmp.Compare(a.Position, b.Position) })
	return out, nil
}

func (r memColumns) Update(_ context.Context, userID uuid.UUID, c *domain.Column) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsColumn(userID, c.ID) {
		return domain.ErrNotFound
	}
	r.m.columns[c.ID] = *c
	return nil
}

func (r memColumns) UpdatePosition(_ context.Context, userID, id uuid.UUID, position int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.positionErr != nil {
		if err := r.m.positionErr(id); err != nil {
			return err
		}
	}
	if !r.m.ownsColumn(userID, id) {
		return domain.ErrNotFound
	}
	c := r.m.columns[id]
	c.Position = position
	r.m.columns[id] = c
	return nil
}

func (r memColumns) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsColumn(userID, id) {
		return domain.ErrNotFound
	}
	delete(r.m.columns, id)
	for cardID, c := range r.m.cards {
		if c.ColumnID == id {
			delete(r.m.cards, cardID)
		}
	}
	return nil
}

type memCards struct{ m *memStore }

func (r memCards) Create(_ context.Context, userID uuid.UUID, c *domain.Card) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsColumn(userID, c.ColumnID) {
		return domain.ErrNotFound
	}
	r.m.cards[c.ID] = *c
	return nil
}

func (r memCards) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsCard(userID, id) {
		return nil, domain.ErrNotFound
	}
	c := r.m.cards[id]
	return &c, nil
}

func (r memCards) ListByColumns(_ context.Context, userID uuid.UUID, columnIDs []uuid.UUID) ([]*domain.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*domain.Card{}
	for _, c := range r.m.cards {
		if slices.Contains(columnIDs, c.ColumnID) && r.m.ownsColumn(userID, c.ColumnID) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Card) int { return cmp.Compare(a.Position, b.Position) })
	return out, nil
}

func (r memCards) Update(_ context.Context, userID uuid.UUID, c *domain.Card) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsCard(userID, c.ID) {
		return domain.ErrNotFound
	}
	r.m.cards[c.ID] = *c
	return nil
}

func (r memCards) Move(_ context.Context, userID, id, columnID uuid.UUID, position int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.moves = append(r.m.moves, id)
	if r.m.moveErr != nil {
		if err := r.m.moveErr(id); err != nil {
			return err
		}
	}
	if !r.m.ownsCard(userID, id) || !r.m.ownsColumn(userID, columnID) {
		return domain.ErrNotFound
	}
	c := r.m.cards[id]
	c.ColumnID = columnID
	c.Position = position
	r.m.cards[id] = c
	return nil
}

func (r memCards) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsCard(userID, id) {
		return domain.ErrNotFound
	}
	delete(r.m.cards, id)
	return nil
}

type memTags struct{ m *memStore }

func (r memTags) Create(_ context.Context, userID uuid.UUID, t *domain.Tag) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsBoard(userID, t.BoardID) {
		return domain.ErrNotFound
	}
	r.m.tags[t.ID] = *t
	return nil
}

func (r memTags) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tags[id]
	if !ok || !r.m.ownsBoard(userID, t.BoardID) {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r memTags) ListByBoard(_ context.Context, userID, boardID uuid.UUID) ([]*domain.Tag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*domain.Tag{}
	for _, t := range r.m.tags {
		if t.BoardID == boardID && r.m.ownsBoard(userID, boardID) {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r memTags) Update(_ context.Context, userID uuid.UUID, t *domain.Tag) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsBoard(userID, t.BoardID) {
		return domain.ErrNotFound
	}
	r.m.tags[t.ID] = *t
	return nil
}

func (r memTags) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tags[id]
	if !ok || !r.m.ownsBoard(userID, t.BoardID) {
		return domain.ErrNotFound
	}
	delete(r.m.tags, id)
	for k := range r.m.cardTags {
		if k[1] == id {
			delete(r.m.cardTags, k)
		}
	}
	return nil
}

type memCardTags struct{ m *memStore }

func (r memCardTags) Create(_ context.Context, userID uuid.UUID, ct *domain.CardTag) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !r.m.ownsCard(userID, ct.CardID) {
		return domain.ErrNotFound
	}
	// The tag must be on the card's own board.
	tag, ok := r.m.tags[ct.TagID]
	if !ok || tag.BoardID != r.m.columns[r.m.cards[ct.CardID].ColumnID].BoardID {
		return domain.ErrNotFound
	}
	key := [2]uuid.UUID{ct.CardID, ct.TagID}
	if _, ok := r.m.cardTags[key]; ok {
		return domain.ErrConflict
	}
	r.m.cardTags[key] = *ct
	return nil
}

func (r memCardTags) Delete(_ context.Context, userID, cardID, tagID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]uuid.UUID{cardID, tagID}
	if _, ok := r.m.cardTags[key]; !ok || !r.m.ownsCard(userID, cardID) {
		return domain.ErrNotFound
	}
	delete(r.m.cardTags, key)
	return nil
}

func (r memCardTags) ListByCards(_ context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.CardTag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*domain.CardTag{}
	for k, ct := range r.m.cardTags {
		if slices.Contains(cardIDs, k[0]) && r.m.ownsCard(userID, k[0]) {
			out = append(out, &ct)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Cache, publisher, notifier
// ---------------------------------------------------------------------------

// memCache versions every entry the way the Redis cache does: a counter per
// key, bumped by each write and delete, with sets refused on a mismatch.
type memCache struct {
	mu           sync.Mutex
	boards       map[uuid.UUID]*domain.BoardDetail
	lists        map[uuid.UUID][]*domain.Board
	boardVersion map[uuid.UUID]int64
	listVersion  map[uuid.UUID]int64
}

func newMemCache() *memCache {
	return &memCache{
		boards:       make(map[uuid.UUID]*domain.BoardDetail),
		lists:        make(map[uuid.UUID][]*domain.Board),
		boardVersion: make(map[uuid.UUID]int64),
		listVersion:  make(map[uuid.UUID]int64),
	}
}

func (c *memCache) GetBoard(_ context.Context, boardID uuid.UUID) (*domain.BoardDetail, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boards[boardID].Clone(), c.boardVersion[boardID], nil
}

func (c *memCache) SetBoard(_ context.Context, d *domain.BoardDetail, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.boardVersion[d.ID] != version {
		return false, nil
	}
	c.boards[d.ID] = d.Clone()
	c.boardVersion[d.ID]++
	return true, nil
}

func (c *memCache) DeleteBoard(_ context.Context, boardID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boards, boardID)
	c.boardVersion[boardID]++
	return nil
}

func (c *memCache) GetBoards(_ context.Context, userID uuid.UUID) ([]*domain.Board, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[userID]
	if !ok {
		return nil, c.listVersion[userID], nil
	}
	out := make([]*domain.Board, len(list))
	for i, b := range list {
		cp := *b
		out[i] = &cp
	}
	return out, c.listVersion[userID], nil
}

func (c *memCache) SetBoards(_ context.Context, userID uuid.UUID, boards []*domain.Board, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listVersion[userID] != version {
		return false, nil
	}
	c.lists[userID] = slices.Clone(boards)
	c.listVersion[userID]++
	return true, nil
}

func (c *memCache) DeleteBoards(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, userID)
	c.listVersion[userID]++
	return nil
}

func (c *memCache) snapshot(boardID uuid.UUID) *domain.BoardDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boards[boardID].Clone()
}

// gatedCache holds snapshot writes until the cache has served n snapshot
// reads, so concurrent writers have all read before any of them writes.
type gatedCache struct {
	*memCache
	n     int32
	reads atomic.Int32
	open  chan struct{}
	once  sync.Once
}

func newGatedCache(c *memCache, n int32) *gatedCache {
	return &gatedCache{memCache: c, n: n, open: make(chan struct{})}
}

func (g *gatedCache) GetBoard(ctx context.Context, boardID uuid.UUID) (*domain.BoardDetail, int64, error) {
	d, version, err := g.memCache.GetBoard(ctx, boardID)
	if g.reads.Add(1) >= g.n {
		g.once.Do(func() { close(g.open) })
	}
	return d, version, err
}

func (g *gatedCache) SetBoard(ctx context.Context, d *domain.BoardDetail, version int64) (bool, error) {
	select {
	case <-g.open:
	case <-time.After(2 * time.Second):
	}
	return g.memCache.SetBoard(ctx, d, version)
}

type recorder struct {
	mu      sync.Mutex
	events  []board.Event
	notices []board.Notice
}

func (r *recorder) PublishBoardEvent(_ context.Context, ev board.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Notify(_ context.Context, _ uuid.UUID, n board.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *recorder) lastNotice() board.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return board.Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) eventTypes() []board.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]board.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
