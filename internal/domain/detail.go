package domain

import "github.com/google/uuid"

// BoardDetail is a board together with its ordered columns, their ordered
// cards, each card's tags, and every tag defined on the board.
type BoardDetail struct {
	Board
	Columns []*ColumnDetail `json:"columns"`
	Tags    []*Tag          `json:"tags"`
}

type ColumnDetail struct {
	Column
	Cards []*CardDetail `json:"cards"`
}

type CardDetail struct {
	Card
	Tags []*Tag `json:"tags"`
}

// AssembleBoard nests columns, cards and tags under board. Columns and cards
// keep the order they are given in; cards whose column is not among columns
// and card tags referring to unknown tags are dropped.
func AssembleBoard(board *Board, columns []*Column, cards []*Card, tags []*Tag, cardTags []*CardTag) *BoardDetail {
	tagsByID := make(map[uuid.UUID]*Tag, len(tags))
	for _, t := range tags {
		tagsByID[t.ID] = t
	}

	tagsByCard := make(map[uuid.UUID][]*Tag)
	for _, ct := range cardTags {
		if t, ok := tagsByID[ct.TagID]; ok {
			tagsByCard[ct.CardID] = append(tagsByCard[ct.CardID], t)
		}
	}

	cardsByColumn := make(map[uuid.UUID][]*CardDetail)
	for _, c := range cards {
		cardTags := tagsByCard[c.ID]
		if cardTags == nil {
			cardTags = []*Tag{}
		}
		cardsByColumn[c.ColumnID] = append(cardsByColumn[c.ColumnID], &CardDetail{Card: *c, Tags: cardTags})
	}

	detail := &BoardDetail{
		Board:   *board,
		Columns: make([]*ColumnDetail, 0, len(columns)),
		Tags:    tags,
	}
	if detail.Tags == nil {
		detail.Tags = []*Tag{}
	}
	for _, col := range columns {
		colCards := cardsByColumn[col.ID]
		if colCards == nil {
			colCards = []*CardDetail{}
		}
		detail.Columns = append(detail.Columns, &ColumnDetail{Column: *col, Cards: colCards})
	}

	return detail
}

// Clone returns a deep copy of d. Tags are copied per card so that patching a
// tag in one place does not leak into a snapshot held elsewhere.
func (d *BoardDetail) Clone() *BoardDetail {
	if d == nil {
		return nil
	}
	out := &BoardDetail{
		Board:   d.Board,
		Columns: make([]*ColumnDetail, len(d.Columns)),
		Tags:    cloneTags(d.Tags),
	}
	if d.Description != nil {
		desc := *d.Description
		out.Description = &desc
	}
	for i, col := range d.Columns {
		out.Columns[i] = col.Clone()
	}
	return out
}

func (c *ColumnDetail) Clone() *ColumnDetail {
	out := &ColumnDetail{
		Column: c.Column,
		Cards:  make([]*CardDetail, len(c.Cards)),
	}
	for i, card := range c.Cards {
		out.Cards[i] = card.Clone()
	}
	return out
}

func (c *CardDetail) Clone() *CardDetail {
	out := &CardDetail{Card: c.Card, Tags: cloneTags(c.Tags)}
	if c.Description != nil {
		desc := *c.Description
		out.Description = &desc
	}
	return out
}

func cloneTags(tags []*Tag) []*Tag {
	out := make([]*Tag, len(tags))
	for i, t := range tags {
		cp := *t
		out[i] = &cp
	}
	return out
}

// NextColumnPosition returns one past the highest column position, or 0.
func (d *BoardDetail) NextColumnPosition() int {
	if len(d.Columns) == 0 {
		return 0
	}
	highest := d.Columns[0].Position
	for _, col := range d.Columns[1:] {
		highest = max(highest, col.Position)
	}
	return highest + 1
}

// NextCardPosition returns one past the highest card position, or 0.
func (c *ColumnDetail) NextCardPosition() int {
	if len(c.Cards) == 0 {
		return 0
	}
	highest := c.Cards[0].Position
	for _, card := range c.Cards[1:] {
		highest = max(highest, card.Position)
	}
	return highest + 1
}

// Column returns the column with the given ID and its index, or nil, -1.
func (d *BoardDetail) Column(id uuid.UUID) (*ColumnDetail, int) {
	for i, col := range d.Columns {
		if col.ID == id {
			return col, i
		}
	}
	return nil, -1
}

// Card returns the card with the given ID and the column holding it.
func (d *BoardDetail) Card(id uuid.UUID) (*CardDetail, *ColumnDetail) {
	for _, col := range d.Columns {
		for _, card := range col.Cards {
			if card.ID == id {
				return card, col
			}
		}
	}
	return nil, nil
}

// Tag returns the board tag with the given ID, or nil.
func (d *BoardDetail) Tag(id uuid.UUID) *Tag {
	for _, t := range d.Tags {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ColumnIDs returns the IDs of all columns in display order.
func (d *BoardDetail) ColumnIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(d.Columns))
	for i, col := range d.Columns {
		ids[i] = col.ID
	}
	return ids
}
