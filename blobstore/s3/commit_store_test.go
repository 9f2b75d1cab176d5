package s3

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/punchgo/blobstore"
)

// fakeDDB implements DDBClient with conditional-write semantics.
type fakeDDB struct {
	mu    sync.Mutex
	items map[string]map[uint64]string // base_uri -> version -> snapshot name

	// afterQuery, if set, runs after each Query returns, simulating a
	// racing writer between the version read and the conditional put.
	afterQuery func()
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[string]map[uint64]string)}
}

func (f *fakeDDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := params.Item["base_uri"].(*ddbtypes.AttributeValueMemberS).Value
	version, err := strconv.ParseUint(params.Item["version"].(*ddbtypes.AttributeValueMemberN).Value, 10, 64)
	if err != nil {
		return nil, err
	}
	name := params.Item["snapshot_name"].(*ddbtypes.AttributeValueMemberS).Value

	versions := f.items[uri]
	if versions == nil {
		versions = make(map[uint64]string)
		f.items[uri] = versions
	}
	if _, exists := versions[version]; exists {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("version exists")}
	}
	versions[version] = name
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*ddbtypes.AttributeValueMemberS).Value
	versions := f.items[uri]

	var latest uint64
	for v := range versions {
		if v > latest {
			latest = v
		}
	}
	var out *dynamodb.QueryOutput
	if latest == 0 {
		out = &dynamodb.QueryOutput{}
	} else {
		out = &dynamodb.QueryOutput{
			Items: []map[string]ddbtypes.AttributeValue{{
				"base_uri":      &ddbtypes.AttributeValueMemberS{Value: uri},
				"version":       &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(latest, 10)},
				"snapshot_name": &ddbtypes.AttributeValueMemberS{Value: versions[latest]},
			}},
		}
	}

	if f.afterQuery != nil {
		hook := f.afterQuery
		f.afterQuery = nil
		f.mu.Unlock()
		hook()
		f.mu.Lock()
	}
	return out, nil
}

func newTestCommitStore() (*CommitStore, *fakeDDB) {
	ddb := newFakeDDB()
	store := NewStore(newFakeS3(), "bucket", "punchgo")
	return NewCommitStore(store, ddb, "punchgo-commits", "s3://bucket/punchgo"), ddb
}

func TestCommitStore_CurrentPointer(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCommitStore()

	// No commits yet.
	_, err := store.Open(ctx, CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, CurrentName, []byte("snapshot-000001.bin")))

	blob, err := store.Open(ctx, CurrentName)
	require.NoError(t, err)
	got, err := blobstore.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-000001.bin"), got)

	// A second commit supersedes the first.
	require.NoError(t, store.Put(ctx, CurrentName, []byte("snapshot-000002.bin")))
	blob, err = store.Open(ctx, CurrentName)
	require.NoError(t, err)
	got, err = blobstore.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-000002.bin"), got)
}

func TestCommitStore_ConcurrentCommit(t *testing.T) {
	ctx := context.Background()
	store, ddb := newTestCommitStore()

	// A racing writer takes the next version between our version read and
	// our conditional put.
	ddb.afterQuery = func() {
		_, err := ddb.PutItem(ctx, &dynamodb.PutItemInput{
			Item: map[string]ddbtypes.AttributeValue{
				"base_uri":      &ddbtypes.AttributeValueMemberS{Value: "s3://bucket/punchgo"},
				"version":       &ddbtypes.AttributeValueMemberN{Value: "1"},
				"snapshot_name": &ddbtypes.AttributeValueMemberS{Value: "theirs.bin"},
			},
		})
		require.NoError(t, err)
	}

	err := store.commit(ctx, "ours.bin")
	require.ErrorIs(t, err, ErrConcurrentCommit)
}

func TestCommitStore_PassthroughNames(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCommitStore()

	require.NoError(t, store.Put(ctx, "snapshot-000001.bin", []byte("payload")))
	blob, err := store.Open(ctx, "snapshot-000001.bin")
	require.NoError(t, err)
	defer blob.Close()

	got, err := blobstore.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}
