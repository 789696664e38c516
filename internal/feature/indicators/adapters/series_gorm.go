package adapters

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/usecase"
)

const upsertBatchSize = 500

type seriesGorm struct {
	db *gorm.DB
}

var (
	_ usecase.SeriesStore  = (*seriesGorm)(nil)
	_ usecase.SeriesWriter = (*seriesGorm)(nil)
)

func NewSeriesRepository(db *gorm.DB) *seriesGorm {
	return &seriesGorm{db: db}
}

// ObservationModel is one dated value of one index. NameKey is the
// normalized name used for lookups; Name keeps the display spelling.
// (NameKey, Date) is unique, so a CSV with several rows on the same date
// keeps only the last one here, while MemoryStore keeps all of them.
type ObservationModel struct {
	ID      uint      `gorm:"primaryKey"`
	NameKey string    `gorm:"size:128;not null;uniqueIndex:obs_name_date,priority:1"`
	Name    string    `gorm:"size:128;not null"`
	Date    time.Time `gorm:"not null;uniqueIndex:obs_name_date,priority:2"`
	Value   float64   `gorm:"not null"`
}

func (ObservationModel) TableName() string {
	return "index_observations"
}

// UpsertBatch stores observations under name. A later write for the same
// name and date replaces the value, within one batch or across batches.
func (r *seriesGorm) UpsertBatch(ctx context.Context, name string, obs []entity.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	key := NameKey(name)
	display := strings.TrimSpace(name)
	ms := make([]ObservationModel, 0, len(obs))
	// 同一バッチ内の重複日付は後勝ち。postgresは1文で同じ行を二度更新できない
	seen := make(map[time.Time]int, len(obs))
	for _, o := range obs {
		if i, ok := seen[o.Date.UTC()]; ok {
			ms[i].Value = o.Value
			continue
		}
		seen[o.Date.UTC()] = len(ms)
		ms = append(ms, ObservationModel{
			NameKey: key,
			Name:    display,
			Date:    o.Date,
			Value:   o.Value,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "value"}),
	}).CreateInBatches(&ms, upsertBatchSize).Error
}

func (r *seriesGorm) Lookup(ctx context.Context, name string) (entity.Series, error) {
	var rows []ObservationModel
	err := r.db.WithContext(ctx).
		Where("name_key = ?", NameKey(name)).
		Order("date ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return entity.Series{}, err
	}
	if len(rows) == 0 {
		return entity.Series{}, domain.ErrNotFound
	}

	s := entity.Series{Name: rows[0].Name, Observations: make([]entity.Observation, 0, len(rows))}
	for _, m := range rows {
		s.Observations = append(s.Observations, entity.Observation{Date: m.Date, Value: m.Value})
	}
	return s, nil
}

// ListNames returns one display name per index, ordered by key.
func (r *seriesGorm) ListNames(ctx context.Context) ([]string, error) {
	var rows []struct{ Name string }
	err := r.db.WithContext(ctx).
		Model(&ObservationModel{}).
		Select("MIN(name) AS name").
		Group("name_key").
		Order("name_key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out, nil
}
