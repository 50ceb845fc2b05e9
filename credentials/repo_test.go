package credentials_test

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-intern-portal/credentials"
	"github.com/jrsteele09/go-intern-portal/credentials/repofake"
	"github.com/stretchr/testify/require"
)

const slot = "token"

func repos(t *testing.T) map[string]credentials.Repo {
	t.Helper()

	fileRepo, err := credentials.NewFileRepo(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisRepo := credentials.NewRedisRepo(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = redisRepo.Close() })

	return map[string]credentials.Repo{
		"file":  fileRepo,
		"redis": redisRepo,
		"fake":  repofake.NewFakeCredentialRepo(),
	}
}

func TestRepoContract(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(ctx, slot)
			require.ErrorIs(t, err, credentials.ErrNotFound)

			require.NoError(t, repo.Set(ctx, slot, "abc.def.ghi"))
			value, err := repo.Get(ctx, slot)
			require.NoError(t, err)
			require.Equal(t, "abc.def.ghi", value)

			require.NoError(t, repo.Set(ctx, slot, "second"))
			value, err = repo.Get(ctx, slot)
			require.NoError(t, err)
			require.Equal(t, "second", value)

			require.NoError(t, repo.Delete(ctx, slot))
			_, err = repo.Get(ctx, slot)
			require.ErrorIs(t, err, credentials.ErrNotFound)

			// deleting an empty slot is fine
			require.NoError(t, repo.Delete(ctx, slot))
		})
	}
}

func TestRepoRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			require.Error(t, repo.Set(ctx, "", "v"))
			_, err := repo.Get(ctx, "")
			require.Error(t, err)
			require.Error(t, repo.Delete(ctx, ""))
		})
	}
}

func TestFileRepoSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, slot, "persisted"))

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	value, err := second.Get(ctx, slot)
	require.NoError(t, err)
	require.Equal(t, "persisted", value)
}

func TestFileRepoCorruptFile(t *testing.T) {
	ctx := context.Background()
	repo, err := credentials.NewFileRepo(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o600))

	_, err = repo.Get(ctx, slot)
	require.Error(t, err)
	require.NotErrorIs(t, err, credentials.ErrNotFound)
}

func TestRedisRepoUsesPrefixedKey(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	repo := credentials.NewRedisRepo(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Set(ctx, slot, "xyz"))
	got, err := mr.Get("portal:credential:token")
	require.NoError(t, err)
	require.Equal(t, "xyz", got)
	require.Zero(t, mr.TTL("portal:credential:token"))
}

func TestFakeRepoInjectedError(t *testing.T) {
	ctx := context.Background()
	repo := repofake.NewFakeCredentialRepo()
	require.NoError(t, repo.Set(ctx, slot, "v"))
	require.True(t, repo.Has(slot))

	repo.Err = os.ErrPermission
	_, err := repo.Get(ctx, slot)
	require.ErrorIs(t, err, os.ErrPermission)
}
