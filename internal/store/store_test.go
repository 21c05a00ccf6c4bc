package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
}

func TestStore_ReadCollection(t *testing.T) {
	t.Run("absent collection is empty", func(t *testing.T) {
		s := New(NewMemoryBackend())
		records, err := s.ReadCollection(context.Background(), CollectionPeople)
		require.NoError(t, err)
		require.NotNil(t, records)
		require.Len(t, records, 0)
	})

	t.Run("write then read", func(t *testing.T) {
		s := New(NewMemoryBackend())
		ctx := context.Background()

		err := s.WriteCollection(ctx, CollectionTeams, []Record{
			Record(`{"id":"t1","name":"Platform"}`),
			Record(`{"id":"t2","name":"Data"}`),
		})
		require.NoError(t, err)

		records, err := s.ReadCollection(ctx, CollectionTeams)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.JSONEq(t, `{"id":"t2","name":"Data"}`, string(records[1]))
	})

	t.Run("write replaces whole collection", func(t *testing.T) {
		s := New(NewMemoryBackend())
		ctx := context.Background()

		require.NoError(t, s.WriteCollection(ctx, CollectionTeams, []Record{Record(`{"id":"a"}`), Record(`{"id":"b"}`)}))
		require.NoError(t, s.WriteCollection(ctx, CollectionTeams, []Record{Record(`{"id":"c"}`)}))

		records, err := s.ReadCollection(ctx, CollectionTeams)
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}

func TestStore_Update(t *testing.T) {
	t.Run("commits several collections at once", func(t *testing.T) {
		backend := NewMemoryBackend()
		s := New(backend)
		ctx := context.Background()

		err := s.Update(ctx, func(tx *Tx) error {
			if err := WriteRows(tx, CollectionPeople, []testRow{{ID: "p1", Name: "Ana", OrganizationID: "o1"}}); err != nil {
				return err
			}
			return WriteRows(tx, CollectionTeams, []testRow{{ID: "t1", Name: "Ops", OrganizationID: "o1"}})
		})
		require.NoError(t, err)

		data, _, err := backend.Load(ctx)
		require.NoError(t, err)

		var blob map[string][]map[string]any
		require.NoError(t, json.Unmarshal(data, &blob))
		require.Equal(t, "o1", blob["people"][0]["organization_id"])
		require.Equal(t, "Ops", blob["teams"][0]["name"])
	})

	t.Run("callback error discards every change", func(t *testing.T) {
		s := New(NewMemoryBackend())
		ctx := context.Background()
		require.NoError(t, s.WriteCollection(ctx, CollectionPeople, []Record{Record(`{"id":"p1"}`)}))

		boom := errors.New("boom")
		err := s.Update(ctx, func(tx *Tx) error {
			if err := tx.Write(CollectionPeople, nil); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		records, err := s.ReadCollection(ctx, CollectionPeople)
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("no writes means no save", func(t *testing.T) {
		backend := NewMemoryBackend()
		s := New(backend)

		err := s.Update(context.Background(), func(tx *Tx) error {
			require.False(t, tx.Exists())
			return nil
		})
		require.NoError(t, err)

		data, _, err := backend.Load(context.Background())
		require.NoError(t, err)
		require.Nil(t, data)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		backend := NewMemoryBackend()
		backend.FailSave = errors.New("quota exceeded")
		s := New(backend)

		err := s.WriteCollection(context.Background(), CollectionAssets, []Record{Record(`{"id":"a1"}`)})
		require.Error(t, err)
		require.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("view rejects writes", func(t *testing.T) {
		s := New(NewMemoryBackend())
		err := s.View(context.Background(), func(tx *Tx) error {
			return tx.Write(CollectionAssets, nil)
		})
		require.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("unknown top-level keys survive a commit", func(t *testing.T) {
		backend := NewMemoryBackend()
		_, err := backend.Save(context.Background(), []byte(`{"inventory":[{"id":"i1"}]}`), "")
		require.NoError(t, err)

		s := New(backend)
		require.NoError(t, s.WriteCollection(context.Background(), CollectionPeople, []Record{Record(`{"id":"p1"}`)}))

		records, err := s.ReadCollection(context.Background(), CollectionInventory)
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}

func TestStore_StaleWriterConflicts(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	first := New(backend)
	second := New(backend)

	require.NoError(t, first.WriteCollection(ctx, CollectionPeople, []Record{Record(`{"id":"p1"}`)}))

	// second 在 first 提交前读取了快照
	err := second.Update(ctx, func(tx *Tx) error {
		require.NoError(t, first.WriteCollection(ctx, CollectionPeople, []Record{Record(`{"id":"p1"}`), Record(`{"id":"p2"}`)}))
		return tx.Write(CollectionPeople, []Record{Record(`{"id":"p3"}`)})
	})
	require.ErrorIs(t, err, ErrConflict)

	records, err := first.ReadCollection(ctx, CollectionPeople)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "blob.json")

	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	data, revision, err := backend.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, data)
	require.Empty(t, revision)

	rev1, err := backend.Save(ctx, []byte(`{"people":[]}`), "")
	require.NoError(t, err)
	require.NotEmpty(t, rev1)

	_, err = backend.Save(ctx, []byte(`{"people":[{}]}`), "")
	require.ErrorIs(t, err, ErrConflict)

	rev2, err := backend.Save(ctx, []byte(`{"teams":[]}`), rev1)
	require.NoError(t, err)
	require.NotEqual(t, rev1, rev2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"teams":[]}`, string(raw))
}

func TestCompressedBackend(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	backend, err := NewCompressedBackend(inner)
	require.NoError(t, err)
	defer backend.Close()

	s := New(backend)
	rows := []testRow{{ID: "a1", Name: "ThinkPad T14", OrganizationID: "o1"}}
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		return WriteRows(tx, CollectionAssets, rows)
	}))

	raw, _, err := inner.Load(ctx)
	require.NoError(t, err)
	require.False(t, json.Valid(raw))

	var got []testRow
	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		got, err = ReadRows[testRow](tx, CollectionAssets)
		return err
	}))
	require.Equal(t, rows, got)
}
