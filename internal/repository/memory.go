package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Memory is a [RecordStore] that lives as long as the process.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateRecord(
	ctx context.Context, params CreateRecordParams,
) (*Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var player *string
	if params.Player != nil {
		p := *params.Player
		player = &p
	}
	record := Record{
		RecordId:       newRecordId(),
		Player:         player,
		Rows:           params.Params.Rows,
		Columns:        params.Params.Columns,
		MineCount:      params.Params.MineCount,
		Won:            params.Won,
		ElapsedSeconds: params.ElapsedSeconds,
		FinishedAt:     params.FinishedAt.UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)

	return &record, nil
}

func (m *Memory) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Record, error) {
	m.mu.Lock()
	result := make([]Record, 0)
	for _, r := range m.records {
		if r.Won && filter.match(r) {
			result = append(result, r)
		}
	}
	m.mu.Unlock()

	slices.SortStableFunc(result, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.ElapsedSeconds, b.ElapsedSeconds),
			a.FinishedAt.Compare(b.FinishedAt),
		)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
