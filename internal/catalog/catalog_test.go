package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectMigratesTables(t *testing.T) {
	cat, err := Connect(":memory:", false)
	require.NoError(t, err)
	defer cat.Close()

	require.True(t, cat.db.Migrator().HasTable(&CallRecord{}))
	require.True(t, cat.db.Migrator().HasTable(&BucketManifest{}))
}

func TestRecordCallAndFinishCall(t *testing.T) {
	cat, err := Connect(":memory:", false)
	require.NoError(t, err)
	defer cat.Close()

	rec := &CallRecord{CallUUID: "call-1", TemplateName: "ex:Person"}
	require.NoError(t, cat.RecordCall(rec))

	require.NoError(t, cat.FinishCall("call-1", 42, 2, nil))

	calls, err := cat.CallsForTemplate("ex:Person")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, int64(42), calls[0].RowCount)
	require.Equal(t, 2, calls[0].ChunkCount)
	require.NotNil(t, calls[0].FinishedAt)
	require.Empty(t, calls[0].Error)
}

func TestFinishCallRecordsError(t *testing.T) {
	cat, err := Connect(":memory:", false)
	require.NoError(t, err)
	defer cat.Close()

	rec := &CallRecord{CallUUID: "call-err", TemplateName: "ex:Bad"}
	require.NoError(t, cat.RecordCall(rec))
	require.NoError(t, cat.FinishCall("call-err", 0, 0, errors.New("boom")))

	calls, err := cat.CallsForTemplate("ex:Bad")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, "boom", calls[0].Error)
}

func TestRecordBucketAndBucketsForCall(t *testing.T) {
	cat, err := Connect(":memory:", false)
	require.NoError(t, err)
	defer cat.Close()

	require.NoError(t, cat.RecordCall(&CallRecord{CallUUID: "call-2", TemplateName: "ex:Person"}))
	require.NoError(t, cat.RecordBucket(&BucketManifest{
		CallUUID:   "call-2",
		Predicate:  "ex:name",
		ObjectType: "Literal",
		RowCount:   10,
	}))
	require.NoError(t, cat.RecordBucket(&BucketManifest{
		CallUUID:   "call-2",
		Predicate:  "ex:age",
		ObjectType: "Literal",
		RowCount:   10,
	}))

	buckets, err := cat.BucketsForCall("call-2")
	require.NoError(t, err)
	require.Len(t, buckets, 2)
}
