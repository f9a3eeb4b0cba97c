package docstore

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNote struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Title  string `json:"title"`
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mockDB.Close()
	})
	return NewStore(sqlx.NewDb(mockDB, "mysql")), mock
}

func TestStore_Put(t *testing.T) {
	t.Run("uses the provided id", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
			WithArgs(CollectionNotes, "note-1", []byte(`{"id":"note-1","userId":"user-1","title":"Biology"}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := store.Put(context.Background(), CollectionNotes, "note-1", testNote{
			ID:     "note-1",
			UserID: "user-1",
			Title:  "Biology",
		})
		require.NoError(t, err)
		assert.Equal(t, "note-1", id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := store.Put(context.Background(), CollectionNotes, "", testNote{})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(mock sqlmock.Sqlmock)
		want       testNote
		wantErr    error
		wantDecode bool
	}{
		{
			name: "decodes an existing document",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents WHERE collection = ? AND doc_id = ?")).
					WithArgs(CollectionNotes, "note-1").
					WillReturnRows(sqlmock.NewRows([]string{"body"}).
						AddRow([]byte(`{"id":"note-1","userId":"user-1","title":"Biology"}`)))
			},
			want: testNote{ID: "note-1", UserID: "user-1", Title: "Biology"},
		},
		{
			name: "missing document returns ErrNotFound",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents")).
					WithArgs(CollectionNotes, "missing").
					WillReturnRows(sqlmock.NewRows([]string{"body"}))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "malformed body returns a decode error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents")).
					WithArgs(CollectionNotes, "note-1").
					WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"id":`)))
			},
			wantDecode: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tc.setup(mock)

			id := "note-1"
			if tc.wantErr != nil {
				id = "missing"
			}
			got, err := Get[testNote](context.Background(), store, CollectionNotes, id)
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.wantDecode:
				var decodeErr *DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, CollectionNotes, decodeErr.Collection)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQuery(t *testing.T) {
	t.Run("applies equality filters in sorted field order", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT doc_id, body FROM documents WHERE collection = ?"+
				" AND JSON_UNQUOTE(JSON_EXTRACT(body, '$.noteId')) = ?"+
				" AND JSON_UNQUOTE(JSON_EXTRACT(body, '$.userId')) = ?"+
				" ORDER BY created_at")).
			WithArgs(CollectionQuizzes, "note-1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"doc_id", "body"}).
				AddRow("quiz-1", []byte(`{"id":"quiz-1","userId":"user-1","title":""}`)))

		got, err := Query[testNote](context.Background(), store, CollectionQuizzes, map[string]string{
			"userId": "user-1",
			"noteId": "note-1",
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "quiz-1", got[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("silently drops undecodable documents", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT doc_id, body FROM documents WHERE collection = ? ORDER BY created_at")).
			WithArgs(CollectionNotes).
			WillReturnRows(sqlmock.NewRows([]string{"doc_id", "body"}).
				AddRow("note-1", []byte(`{"id":"note-1"}`)).
				AddRow("note-2", []byte(`not json`)).
				AddRow("note-3", []byte(`{"id":"note-3"}`)))

		got, err := Query[testNote](context.Background(), store, CollectionNotes, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "note-1", got[0].ID)
		assert.Equal(t, "note-3", got[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects filter fields that are not identifiers", func(t *testing.T) {
		store, _ := newMockStore(t)
		_, err := Query[testNote](context.Background(), store, CollectionNotes, map[string]string{
			"userId') = ''; DROP TABLE documents; --": "x",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid filter field")
	})
}

func TestStore_MergeFields(t *testing.T) {
	t.Run("patches only the provided fields", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET body = JSON_MERGE_PATCH(body, CAST(? AS JSON))")).
			WithArgs([]byte(`{"score":0.8}`), CollectionQuizzes, "quiz-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.MergeFields(context.Background(), CollectionQuizzes, "quiz-1", map[string]any{
			"score": 0.8,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing document returns ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.MergeFields(context.Background(), CollectionQuizzes, "missing", map[string]any{
			"score": 0.8,
		})
		require.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE collection = ? AND doc_id = ?")).
		WithArgs(CollectionNotes, "note-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), CollectionNotes, "note-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
