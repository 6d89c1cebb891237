package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Inner struct {
	Status string `db:"status"`
	Note   string
}

type outer struct {
	ID string `db:"id"`
	Inner
	Name    string `db:"name"`
	Skipped string `db:"-"`
	private string `db:"private"`
}

func TestStructTagValuesFlattensEmbedded(t *testing.T) {
	assert.Equal(t, []string{"id", "status", "name"}, StructTagValues(outer{}))
	assert.Equal(t, []string{"id", "status", "name"}, StructTagValues(&outer{}))
}

func TestStructToMap(t *testing.T) {
	v := outer{ID: "a1", Inner: Inner{Status: "pending"}, Name: "rice", private: "x"}

	got := StructToMap(&v)
	assert.Equal(t, map[string]any{"id": "a1", "status": "pending", "name": "rice"}, got)

	got = StructToMap(v, "id")
	assert.Equal(t, map[string]any{"status": "pending", "name": "rice"}, got)
}

func TestStructHelpersPanicOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
	assert.Panics(t, func() { StructToMap("nope") })
}

func TestPrefixColumns(t *testing.T) {
	assert.Equal(t, []string{"d.id", "d.status"}, PrefixColumns("d", []string{"id", "status"}))
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "ignored"))

	base := errors.New("boom")
	err := ErrorWrapOrNil(base, "failed to thing")
	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to thing: boom", err.Error())
	assert.Equal(t, base, ErrorWrapOrNil(base, ""))
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, IDLength)
	assert.NotEqual(t, id, NanoID())

	ids := NanoIDs(50)
	assert.Len(t, ids, 50)
	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Empty(t, NanoIDs(0))
}

func TestPointerHelpers(t *testing.T) {
	assert.Nil(t, NonEmptyStringPtr("   "))
	assert.Equal(t, "dock 4", *NonEmptyStringPtr(" dock 4 "))
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, 33.3, RoundFloat64(33.333, 1))
}
