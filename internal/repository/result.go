package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	Stats(ctx context.Context) (*entity.Stats, error)
}

type dbResult struct {
	conn *gorm.DB
}

func NewResultRepository(conn *gorm.DB) ResultRepository {
	return &dbResult{
		conn: conn,
	}
}

func (that *dbResult) Save(ctx context.Context, record *entity.GameRecord) error {
	if err := that.conn.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("can't save game record: %w", err)
	}

	return nil
}

type outcomeCount struct {
	Mode   string
	Winner string
	Total  int
}

func (that *dbResult) Stats(ctx context.Context) (*entity.Stats, error) {
	var rows []outcomeCount

	err := that.conn.WithContext(ctx).
		Model(&entity.GameRecord{}).
		Select("mode, winner, count(*) as total").
		Group("mode, winner").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("can't count game records: %w", err)
	}

	stats := &entity.Stats{}
	for _, row := range rows {
		tally := &stats.PvP
		if row.Mode == entity.ModeAI {
			tally = &stats.AI
		}

		switch row.Winner {
		case entity.PlayerX:
			tally.XWins += row.Total
		case entity.PlayerO:
			tally.OWins += row.Total
		case entity.Draw:
			tally.Draws += row.Total
		}
	}

	return stats, nil
}
