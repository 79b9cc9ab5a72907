package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LoadMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Load(context.Background(), "courses")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte(`[{"id":"c1"}]`)
	require.NoError(t, s.Save(ctx, "courses", value))

	// 调用方修改入参不影响已存储内容
	value[0] = 'X'

	got, err := s.Load(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"c1"}]`, string(got))
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	s := WithPrefix("attendance:", mem)

	require.NoError(t, s.Save(ctx, "semesters", []byte("[]")))

	_, err := mem.Load(ctx, "semesters")
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := mem.Load(ctx, "attendance:semesters")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	got, err := s.Load(ctx, "semesters")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestWithPrefix_Empty(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, Store(mem), WithPrefix("", mem))
}
