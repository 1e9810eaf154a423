package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/kanban/internal/domain"
)

type Store struct {
	pool     *pgxpool.Pool
	users    *UserRepo
	boards   *BoardRepo
	columns  *ColumnRepo
	cards    *CardRepo
	tags     *TagRepo
	cardTags *CardTagRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		users:    NewUserRepo(pool),
		boards:   NewBoardRepo(pool),
		columns:  NewColumnRepo(pool),
		cards:    NewCardRepo(pool),
		tags:     NewTagRepo(pool),
		cardTags: NewCardTagRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Boards() domain.BoardRepository     { return s.boards }
func (s *Store) Columns() domain.ColumnRepository   { return s.columns }
func (s *Store) Cards() domain.CardRepository       { return s.cards }
func (s *Store) Tags() domain.TagRepository         { return s.tags }
func (s *Store) CardTags() domain.CardTagRepository { return s.cardTags }
