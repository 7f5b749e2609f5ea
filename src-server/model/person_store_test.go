package model_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar/src-server/model"
)

func TestPersonStore_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))
	assert.NotZero(t, p.ID)
	assert.Equal(t, int64(1), p.Version)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPersonStore_CreateWithoutNote(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := &model.Person{Name: "bob", Email: "bob@example.com"}
	require.NoError(t, s.Create(ctx, p))

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Empty(t, got.Note)
}

func TestPersonStore_CreateAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	a, b := newPerson("a"), newPerson("b")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPersonStore_CreateRejects(t *testing.T) {
	tests := []struct {
		name   string
		person *model.Person
		kind   error
	}{
		{"nil person", nil, model.ErrInvalidArgument},
		{"id already set", &model.Person{ID: 7, Name: "x", Email: "x@example.com"}, model.ErrIllegalEntity},
		{"blank name", &model.Person{Email: "x@example.com"}, model.ErrInvalidArgument},
		{"whitespace name", &model.Person{Name: "  ", Email: "x@example.com"}, model.ErrInvalidArgument},
		{"blank email", &model.Person{Name: "x"}, model.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := model.NewPersonStore(newTestDB(t, false))

			err := s.Create(ctx, tt.person)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			all, err := s.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all, "nothing must be written")
		})
	}
}

func TestPersonStore_CreateRejectsPersisted(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))

	err := s.Create(ctx, p)
	assert.ErrorIs(t, err, model.ErrIllegalEntity)
}

func TestPersonStore_Update(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))
	other := newPerson("bob")
	require.NoError(t, s.Create(ctx, other))

	p.Name = "Alice Liddell"
	p.Email = "alice@wonderland.example"
	p.Note = ""
	require.NoError(t, s.Update(ctx, p))
	assert.Equal(t, int64(2), p.Version)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	gotOther, err := s.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other, gotOther, "other rows must be unchanged")
}

func TestPersonStore_UpdateRejects(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))

	tests := []struct {
		name   string
		mutate func(p *model.Person) *model.Person
		kind   error
	}{
		{"nil person", func(*model.Person) *model.Person { return nil }, model.ErrInvalidArgument},
		{"id not set", func(p *model.Person) *model.Person { p.ID = 0; return p }, model.ErrIllegalEntity},
		{"blank name", func(p *model.Person) *model.Person { p.Name = ""; return p }, model.ErrInvalidArgument},
		{"blank email", func(p *model.Person) *model.Person { p.Email = ""; return p }, model.ErrInvalidArgument},
		{"unknown id", func(p *model.Person) *model.Person { p.ID = 9999; return p }, model.ErrIllegalEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := *p
			err := s.Update(ctx, tt.mutate(&candidate))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			stored, err := s.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, p, stored)
		})
	}
}

// Two read/write pairs on the same row: the second write was computed from a
// stale read and must not overwrite the first.
func TestPersonStore_UpdateStaleRead(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))

	first, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)

	first.Name = "first writer"
	require.NoError(t, s.Update(ctx, first))

	second.Name = "second writer"
	err = s.Update(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIllegalEntity)
	assert.Contains(t, err.Error(), "stale")

	stored, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "first writer", stored.Name)

	// a fresh read can be written
	second, err = s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	second.Name = "second writer"
	require.NoError(t, s.Update(ctx, second))
}

func TestPersonStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	keep := newPerson("bob")
	require.NoError(t, s.Create(ctx, p))
	require.NoError(t, s.Create(ctx, keep))

	require.NoError(t, s.Delete(ctx, p))

	_, err := s.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.GetByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, keep, got)

	// deleting twice is an error, not a no-op
	err = s.Delete(ctx, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIllegalEntity)
	assert.Contains(t, err.Error(), "not persisted")
}

func TestPersonStore_DeleteRejects(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	assert.ErrorIs(t, s.Delete(ctx, nil), model.ErrInvalidArgument)
	assert.ErrorIs(t, s.Delete(ctx, newPerson("transient")), model.ErrIllegalEntity)
	assert.ErrorIs(t, s.Delete(ctx, &model.Person{ID: 42, Version: 1}), model.ErrIllegalEntity)
}

func TestPersonStore_DeleteStale(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	p := newPerson("alice")
	require.NoError(t, s.Create(ctx, p))
	stale := *p

	p.Note = "changed"
	require.NoError(t, s.Update(ctx, p))

	assert.ErrorIs(t, s.Delete(ctx, &stale), model.ErrIllegalEntity)
	require.NoError(t, s.Delete(ctx, p))
}

func TestPersonStore_GetByID(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	_, err := s.GetByID(ctx, 0)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	got, err := s.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Nil(t, got)
}

func TestPersonStore_FindAll(t *testing.T) {
	ctx := context.Background()
	s := model.NewPersonStore(newTestDB(t, false))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	a, b, c := newPerson("a"), newPerson("b"), newPerson("c")
	for _, p := range []*model.Person{a, b, c} {
		require.NoError(t, s.Create(ctx, p))
	}

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Person{*a, *b, *c}, all)
}

func TestPerson_Equal(t *testing.T) {
	a := &model.Person{ID: 1, Name: "a"}
	sameID := &model.Person{ID: 1, Name: "different"}
	otherID := &model.Person{ID: 2, Name: "a"}
	transient := &model.Person{Name: "a"}

	assert.True(t, a.Equal(sameID))
	assert.False(t, a.Equal(otherID))
	assert.False(t, transient.Equal(&model.Person{Name: "a"}))
	assert.False(t, a.Equal(nil))
}
