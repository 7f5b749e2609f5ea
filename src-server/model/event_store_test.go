package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar/src-server/model"
)

func TestEventStore_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	e := newEvent("standup", instant(1_700_000_000_000), instant(1_700_000_900_000))
	e.Note = "daily"
	require.NoError(t, s.Create(ctx, e))
	assert.NotZero(t, e.ID)
	assert.Equal(t, int64(1), e.Version)

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEventStore_CreateKeepsInstantAcrossZones(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	zone := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, zone)
	e := newEvent("meeting", start, start.Add(time.Hour))
	require.NoError(t, s.Create(ctx, e))

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.StartDate.Equal(start))
	assert.True(t, got.EndDate.Equal(start.Add(time.Hour)))
	assert.Equal(t, time.UTC, got.StartDate.Location())
}

func TestEventStore_Validation(t *testing.T) {
	tests := []struct {
		name  string
		event *model.Event
		ok    bool
	}{
		{"nil event", nil, false},
		{"blank name", newEvent("", instant(0), instant(10)), false},
		{"missing start", newEvent("e", time.Time{}, instant(10)), false},
		{"missing end", newEvent("e", instant(0), time.Time{}), false},
		{"start equals end", newEvent("e", instant(5), instant(5)), false},
		{"start after end", newEvent("e", instant(6), instant(5)), false},
		{"start before end", newEvent("e", instant(5), instant(6)), true},
		{"starts at epoch", newEvent("e", instant(0), instant(1)), true},
		{"negative instants", newEvent("e", instant(-20), instant(-10)), true},
		{"spans epoch", newEvent("e", instant(-1), instant(1)), true},
		{"same millisecond", newEvent("e", instant(5).Add(100*time.Microsecond), instant(5).Add(600*time.Microsecond)), false},
		{"sub-millisecond dropped", newEvent("e", instant(5).Add(300*time.Microsecond), instant(6).Add(900*time.Microsecond)), true},
	}

	for _, tt := range tests {
		t.Run("create/"+tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := model.NewEventStore(newTestDB(t, false))

			var candidate *model.Event
			if tt.event != nil {
				c := *tt.event
				candidate = &c
			}
			err := s.Create(ctx, candidate)
			if tt.ok {
				require.NoError(t, err)
				got, err := s.GetByID(ctx, candidate.ID)
				require.NoError(t, err)
				assert.Equal(t, candidate, got)
				return
			}
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
			all, err := s.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})

		t.Run("update/"+tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := model.NewEventStore(newTestDB(t, false))

			original := newEvent("original", instant(100), instant(200))
			require.NoError(t, s.Create(ctx, original))

			var candidate *model.Event
			if tt.event != nil {
				c := *tt.event
				c.ID = original.ID
				c.Version = original.Version
				candidate = &c
			}
			err := s.Update(ctx, candidate)
			if tt.ok {
				require.NoError(t, err)
				got, err := s.GetByID(ctx, original.ID)
				require.NoError(t, err)
				assert.Equal(t, candidate, got)
				return
			}
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
			got, err := s.GetByID(ctx, original.ID)
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

func TestEventStore_CreateRejectsID(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	e := newEvent("e", instant(0), instant(1))
	e.ID = 3
	assert.ErrorIs(t, s.Create(ctx, e), model.ErrIllegalEntity)
}

func TestEventStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	e := newEvent("e", hours(1), hours(2))
	keep := newEvent("keep", hours(3), hours(4))
	require.NoError(t, s.Create(ctx, e))
	require.NoError(t, s.Create(ctx, keep))

	stale := *e
	e.EndDate = hours(5)
	require.NoError(t, s.Update(ctx, e))
	assert.Equal(t, int64(2), e.Version)

	stale.Name = "lost update"
	assert.ErrorIs(t, s.Update(ctx, &stale), model.ErrIllegalEntity)
	assert.ErrorIs(t, s.Delete(ctx, &stale), model.ErrIllegalEntity)

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	require.NoError(t, s.Delete(ctx, e))
	_, err = s.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, e), model.ErrIllegalEntity)
	assert.ErrorIs(t, s.Update(ctx, e), model.ErrIllegalEntity)

	got, err = s.GetByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, keep, got)
}

func TestEventStore_DeleteRejects(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	assert.ErrorIs(t, s.Delete(ctx, nil), model.ErrInvalidArgument)
	assert.ErrorIs(t, s.Delete(ctx, newEvent("e", instant(0), instant(1))), model.ErrIllegalEntity)
	_, err := s.GetByID(ctx, 0)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestEventStore_FindByDateRange(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	intervals := [][2]int64{{0, 14}, {1, 8}, {9, 10}, {10, 11}, {13, 16}, {14, 16}}
	byInterval := make(map[[2]int64]*model.Event)
	for _, iv := range intervals {
		e := newEvent("event", hours(iv[0]), hours(iv[1]))
		require.NoError(t, s.Create(ctx, e))
		byInterval[iv] = e
	}

	found, err := s.FindByDateRange(ctx, hours(10), hours(13))
	require.NoError(t, err)

	want := []model.Event{
		*byInterval[[2]int64{0, 14}],
		*byInterval[[2]int64{9, 10}],
		*byInterval[[2]int64{10, 11}],
		*byInterval[[2]int64{13, 16}],
	}
	assert.ElementsMatch(t, want, found)
}

func TestEventStore_FindByDateRangeEdges(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	e := newEvent("event", instant(-100), instant(-50))
	require.NoError(t, s.Create(ctx, e))

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"point at end boundary", instant(-50), instant(-50), 1},
		{"point at start boundary", instant(-100), instant(-100), 1},
		{"inside", instant(-80), instant(-70), 1},
		{"covering", instant(-1000), instant(1000), 1},
		{"after", instant(-49), instant(0), 0},
		{"before", instant(-200), instant(-101), 0},
		{"just after end", instant(-50).Add(500 * time.Microsecond), instant(0), 0},
		{"just before start", instant(-200), instant(-100).Add(-500 * time.Microsecond), 0},
		{"end inside first millisecond", instant(-200), instant(-100).Add(500 * time.Microsecond), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.FindByDateRange(ctx, tt.start, tt.end)
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
		})
	}
}

func TestEventStore_FindByDateRangeRejects(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	_, err := s.FindByDateRange(ctx, time.Time{}, instant(1))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = s.FindByDateRange(ctx, instant(1), time.Time{})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = s.FindByDateRange(ctx, instant(2), instant(1))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestEventStore_FindAll(t *testing.T) {
	ctx := context.Background()
	s := model.NewEventStore(newTestDB(t, false))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	a := newEvent("a", instant(0), instant(1))
	b := newEvent("b", instant(2), instant(3))
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Event{*a, *b}, all)
}
