package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/kanban/internal/domain"
)

// ---------------------------------------------------------------------------
// List helpers
// ---------------------------------------------------------------------------

func TestMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"middle down", 1, 2, []string{"A", "C", "B"}},
		{"same index", 1, 1, []string{"A", "B", "C"}},
		{"clamped", 0, 9, []string{"B", "C", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := []string{"A", "B", "C"}
			assert.Equal(t, tt.want, move(in, tt.from, tt.to))
			assert.Equal(t, []string{"A", "B", "C"}, in, "input untouched")
		})
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	src := []string{"A", "B", "C"}
	dst := []string{"X", "Y"}

	newSrc, newDst := transfer(src, dst, 1, 1)
	assert.Equal(t, []string{"A", "C"}, newSrc)
	assert.Equal(t, []string{"X", "B", "Y"}, newDst)

	_, newDst = transfer(src, dst, 0, 10)
	assert.Equal(t, []string{"X", "Y", "A"}, newDst)

	_, newDst = transfer(src, nil, 2, 0)
	assert.Equal(t, []string{"C"}, newDst)

	assert.Equal(t, []string{"A", "B", "C"}, src)
	assert.Equal(t, []string{"X", "Y"}, dst)
}

// ---------------------------------------------------------------------------
// planDragEnd
// ---------------------------------------------------------------------------

type fixture struct {
	board      *domain.BoardDetail
	todo, done *domain.ColumnDetail
	a, b, c    *domain.CardDetail
	x, y       *domain.CardDetail
}

func newFixture() fixture {
	boardID := uuid.New()
	col := func(title string, pos int) *domain.ColumnDetail {
		return &domain.ColumnDetail{Column: domain.Column{ID: uuid.New(), BoardID: boardID, Title: title, Position: pos}}
	}
	todo, done := col("Todo", 0), col("Done", 1)
	card := func(col *domain.ColumnDetail, title string, pos int) *domain.CardDetail {
		c := &domain.CardDetail{Card: domain.Card{ID: uuid.New(), ColumnID: col.ID, Title: title, Position: pos}, Tags: []*domain.Tag{}}
		col.Cards = append(col.Cards, c)
		return c
	}
	f := fixture{todo: todo, done: done}
	f.a, f.b, f.c = card(todo, "A", 0), card(todo, "B", 1), card(todo, "C", 2)
	f.x, f.y = card(done, "X", 0), card(done, "Y", 1)
	f.board = &domain.BoardDetail{
		Board:   domain.Board{ID: boardID, Title: "board"},
		Columns: []*domain.ColumnDetail{todo, done},
		Tags:    []*domain.Tag{},
	}
	return f
}

func cardItem(c *domain.CardDetail) DragItem     { return DragItem{ID: c.ID, Type: ItemCard} }
func columnItem(c *domain.ColumnDetail) DragItem { return DragItem{ID: c.ID, Type: ItemColumn} }

func cardTitles(col *domain.ColumnDetail) []string {
	out := make([]string, len(col.Cards))
	for i, c := range col.Cards {
		out[i] = c.Title
	}
	return out
}

func cardPositions(col *domain.ColumnDetail) []int {
	out := make([]int, len(col.Cards))
	for i, c := range col.Cards {
		out[i] = c.Position
	}
	return out
}

func TestPlanDragEnd_NoOps(t *testing.T) {
	t.Parallel()

	f := newFixture()
	over := cardItem(f.a)

	tests := []struct {
		name string
		ev   DragEndEvent
	}{
		{"dropped outside", DragEndEvent{Active: cardItem(f.a)}},
		{"dropped on itself", DragEndEvent{Active: cardItem(f.a), Over: &over}},
		{"column onto card", DragEndEvent{Active: columnItem(f.todo), Over: ptr(cardItem(f.x))}},
		{"card onto own column at end", DragEndEvent{Active: cardItem(f.c), Over: ptr(columnItem(f.todo))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := planDragEnd(f.board, tt.ev)
			require.NoError(t, err)
			assert.Nil(t, plan)
		})
	}
}

func TestPlanDragEnd_ReorderWithinColumn(t *testing.T) {
	t.Parallel()

	f := newFixture()
	plan, err := planDragEnd(f.board, DragEndEvent{Active: cardItem(f.a), Over: ptr(cardItem(f.c))})
	require.NoError(t, err)
	require.NotNil(t, plan)

	todo, _ := plan.next.Column(f.todo.ID)
	assert.Equal(t, []string{"B", "C", "A"}, cardTitles(todo))
	assert.Equal(t, []int{0, 1, 2}, cardPositions(todo))
	assert.Equal(t, "cards", plan.kind)
	assert.Equal(t, EventCardsReordered, plan.event)

	require.Len(t, plan.writes, 3)
	for _, w := range plan.writes {
		require.NotNil(t, w.ColumnID)
		assert.Equal(t, f.todo.ID, *w.ColumnID)
	}

	assert.Equal(t, []string{"A", "B", "C"}, cardTitles(f.todo), "original board untouched")
	assert.Equal(t, []int{0, 1, 2}, cardPositions(f.todo))
}

func TestPlanDragEnd_OnlyChangedItemsWritten(t *testing.T) {
	t.Parallel()

	f := newFixture()
	// B and C swap; A keeps position 0.
	plan, err := planDragEnd(f.board, DragEndEvent{Active: cardItem(f.c), Over: ptr(cardItem(f.b))})
	require.NoError(t, err)
	require.NotNil(t, plan)

	todo, _ := plan.next.Column(f.todo.ID)
	assert.Equal(t, []string{"A", "C", "B"}, cardTitles(todo))

	ids := make([]uuid.UUID, len(plan.writes))
	for i, w := range plan.writes {
		ids[i] = w.ID
	}
	assert.ElementsMatch(t, []uuid.UUID{f.b.ID, f.c.ID}, ids)
}

func TestPlanDragEnd_MoveAcrossColumns(t *testing.T) {
	t.Parallel()

	f := newFixture()
	plan, err := planDragEnd(f.board, DragEndEvent{Active: cardItem(f.a), Over: ptr(cardItem(f.y))})
	require.NoError(t, err)
	require.NotNil(t, plan)

	todo, _ := plan.next.Column(f.todo.ID)
	done, _ := plan.next.Column(f.done.ID)
	assert.Equal(t, []string{"B", "C"}, cardTitles(todo))
	assert.Equal(t, []int{0, 1}, cardPositions(todo))
	assert.Equal(t, []string{"X", "A", "Y"}, cardTitles(done))
	assert.Equal(t, []int{0, 1, 2}, cardPositions(done))

	moved, holder := plan.next.Card(f.a.ID)
	assert.Equal(t, f.done.ID, moved.ColumnID)
	assert.Equal(t, f.done.ID, holder.ID)

	// Moved card first, then B and C in the source, then Y in the destination.
	require.Len(t, plan.writes, 4)
	assert.Equal(t, f.a.ID, plan.writes[0].ID)
	assert.Equal(t, f.done.ID, *plan.writes[0].ColumnID)
	assert.Equal(t, 1, plan.writes[0].Position)
	assert.Equal(t, f.b.ID, plan.writes[1].ID)
	assert.Equal(t, f.c.ID, plan.writes[2].ID)
	assert.Equal(t, f.y.ID, plan.writes[3].ID)
	assert.Equal(t, 2, plan.writes[3].Position)

	assert.Equal(t, "move", plan.kind)
	assert.Equal(t, opMoveCard.failTitle, plan.op.failTitle)
}

func TestPlanDragEnd_CardOntoColumnAppends(t *testing.T) {
	t.Parallel()

	f := newFixture()
	plan, err := planDragEnd(f.board, DragEndEvent{Active: cardItem(f.b), Over: ptr(columnItem(f.done))})
	require.NoError(t, err)
	require.NotNil(t, plan)

	done, _ := plan.next.Column(f.done.ID)
	assert.Equal(t, []string{"X", "Y", "B"}, cardTitles(done))
	require.Len(t, plan.writes, 2, "moved card plus C shifting up")
	assert.Equal(t, f.b.ID, plan.writes[0].ID)
	assert.Equal(t, 2, plan.writes[0].Position)
	assert.Equal(t, f.c.ID, plan.writes[1].ID)
	assert.Equal(t, 1, plan.writes[1].Position)
}

func TestPlanDragEnd_Columns(t *testing.T) {
	t.Parallel()

	f := newFixture()
	plan, err := planDragEnd(f.board, DragEndEvent{Active: columnItem(f.done), Over: ptr(columnItem(f.todo))})
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, []uuid.UUID{f.done.ID, f.todo.ID}, plan.next.ColumnIDs())
	require.Len(t, plan.writes, 2)
	for _, w := range plan.writes {
		assert.Equal(t, ItemColumn, w.Type)
		assert.Nil(t, w.ColumnID)
	}
	assert.Equal(t, opReorderColumns.failTitle, plan.op.failTitle)
}

func TestPlanDragEnd_Invalid(t *testing.T) {
	t.Parallel()

	f := newFixture()
	unknown := DragItem{ID: uuid.New(), Type: ItemCard}

	_, err := planDragEnd(f.board, DragEndEvent{Active: unknown, Over: ptr(cardItem(f.a))})
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = planDragEnd(f.board, DragEndEvent{Active: cardItem(f.a), Over: &unknown})
	assert.ErrorIs(t, err, ErrInvalidMove)

	_, err = planDragEnd(f.board, DragEndEvent{Active: columnItem(f.todo), Over: &DragItem{ID: uuid.New(), Type: ItemColumn}})
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func ptr[T any](v T) *T { return &v }
