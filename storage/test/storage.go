package storagetest

import (
	"context"
	"os"
	"testing"

	library "github.com/kotone-fm/kotone"
	"github.com/rs/zerolog"
)

// TestSetup is implemented by a storage provider to run the conformance
// cases against it. CreateStorage is called once per case and should return
// an empty store
type TestSetup interface {
	Setup(context.Context) error
	CreateStorage(ctx context.Context, name string) (library.StorageService, error)
	TearDown(context.Context) error
}

type storageCase struct {
	name string
	fn   func(ctx context.Context, t *testing.T, s library.StorageService)
}

// cases every library.StorageService implementation has to pass
var cases = []storageCase{
	{"SongInsertGet", testSongInsertGet},
	{"SongGetUnknown", testSongGetUnknown},
	{"SongFromFingerprint", testSongFromFingerprint},
	{"SongInsertDuplicate", testSongInsertDuplicate},
	{"SongInsertWithID", testSongInsertWithID},
	{"SongUpdateFields", testSongUpdateFields},
	{"SongUpdateFieldsUnknown", testSongUpdateFieldsUnknown},
	{"SongFileKeyUnique", testSongFileKeyUnique},
	{"SongEmptyFields", testSongEmptyFields},
	{"SongDelete", testSongDelete},
	{"TransactionCommit", testTransactionCommit},
	{"TransactionRollback", testTransactionRollback},
	{"TransactionNested", testTransactionNested},
}

// RunTests runs every conformance case in parallel, each against its own
// store created by setup
func RunTests(t *testing.T, setup TestSetup) {
	ctx := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel).WithContext(context.Background())
	ctx = PutT(ctx, t)

	if err := setup.Setup(ctx); err != nil {
		t.Fatal("failed setup:", err)
	}
	t.Cleanup(func() {
		if err := setup.TearDown(ctx); err != nil {
			t.Error("failed teardown:", err)
		}
	})

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			s, err := setup.CreateStorage(ctx, t.Name())
			if err != nil {
				t.Fatal("failed to create storage:", err)
			}
			defer s.Close()

			c.fn(PutT(ctx, t), t, s)
		})
	}
}

type testingKey struct{}

// CtxT returns the testing.TB stored in ctx by RunTests
func CtxT(ctx context.Context) testing.TB {
	return ctx.Value(testingKey{}).(testing.TB)
}

func PutT(ctx context.Context, t testing.TB) context.Context {
	return context.WithValue(ctx, testingKey{}, t)
}
