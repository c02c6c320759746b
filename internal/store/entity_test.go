package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWidget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func newWidgetEntity(s *Store) *Entity[testWidget] {
	return NewEntity[testWidget](s, "widget:").
		WithIndex("code", func(w *testWidget) []string {
			if w.Code == "" {
				return nil
			}
			return []string{w.Code}
		})
}

func TestEntity_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	w := &testWidget{ID: "w1", Name: "first", Code: "alpha"}
	require.NoError(t, widgets.Create(ctx, w.ID, w))

	got, err := widgets.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	_, err = widgets.Get(ctx, "w2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_Create_IDConflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "alpha"}))

	err := widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "beta"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntity_Create_IndexConflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "alpha"}))

	err := widgets.Create(ctx, "w2", &testWidget{ID: "w2", Code: "alpha"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntity_GetByIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Name: "first", Code: "alpha"}))

	got, err := widgets.GetByIndex(ctx, "code", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)

	_, err = widgets.GetByIndex(ctx, "code", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_GetByIndex_Transform(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := NewEntity[testWidget](s, "widget:").
		WithIndexTransform("code",
			func(w *testWidget) []string { return []string{strings.ToLower(w.Code)} },
			strings.ToLower,
		)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "Alpha"}))

	got, err := widgets.GetByIndex(ctx, "code", "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
}

func TestEntity_Update_MovesIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "alpha"}))
	require.NoError(t, widgets.Update(ctx, "w1", &testWidget{ID: "w1", Code: "beta"}))

	got, err := widgets.GetByIndex(ctx, "code", "beta")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)

	_, err = widgets.GetByIndex(ctx, "code", "alpha")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	widgets := newWidgetEntity(s)
	err := widgets.Update(context.Background(), "w1", &testWidget{ID: "w1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "alpha"}))
	require.NoError(t, widgets.Delete(ctx, "w1"))
	require.NoError(t, widgets.Delete(ctx, "w1"))

	// Index freed for reuse.
	require.NoError(t, widgets.Create(ctx, "w2", &testWidget{ID: "w2", Code: "alpha"}))
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	widgets := newWidgetEntity(s)

	require.NoError(t, widgets.Create(ctx, "w1", &testWidget{ID: "w1", Code: "alpha"}))
	require.NoError(t, widgets.Create(ctx, "w2", &testWidget{ID: "w2", Code: "beta"}))

	var ids []string
	for w, err := range widgets.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, w.ID)
	}
	assert.ElementsMatch(t, []string{"w1", "w2"}, ids)
}
