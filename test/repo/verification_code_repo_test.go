package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
	"github.com/askthebridge/bridge/internal/service"
	"github.com/askthebridge/bridge/test/testutil"
)

func TestVerificationCodeRepoLifecycle(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	codes := repo.NewVerificationCodeRepo(db)
	email := service.NewID() + "@example.com"
	now := timeutil.NowUnix()

	first := &model.VerificationCode{
		ID:        service.NewID(),
		Email:     email,
		Purpose:   model.CodePurposeSignup,
		CodeHash:  "hash-1",
		Ctime:     now - 10,
		ExpiresAt: now + 300,
	}
	second := &model.VerificationCode{
		ID:        service.NewID(),
		Email:     email,
		Purpose:   model.CodePurposeSignup,
		CodeHash:  "hash-2",
		Ctime:     now,
		ExpiresAt: now + 300,
	}
	require.NoError(t, codes.Create(context.Background(), first))
	require.NoError(t, codes.Create(context.Background(), second))

	latest, err := codes.LatestByEmail(context.Background(), email, model.CodePurposeSignup)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)

	require.NoError(t, codes.MarkUsed(context.Background(), second.ID))
	require.ErrorIs(t, codes.MarkUsed(context.Background(), second.ID), appErr.ErrNotFound)

	latest, err = codes.LatestByEmail(context.Background(), email, model.CodePurposeSignup)
	require.NoError(t, err)
	require.Equal(t, first.ID, latest.ID)

	_, err = codes.LatestByEmail(context.Background(), email, model.CodePurposePasswordReset)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestVerificationCodeRepoDeleteExpired(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	codes := repo.NewVerificationCodeRepo(db)
	email := service.NewID() + "@example.com"
	now := timeutil.NowUnix()

	expired := &model.VerificationCode{
		ID:        service.NewID(),
		Email:     email,
		Purpose:   model.CodePurposeSignup,
		CodeHash:  "hash-old",
		Ctime:     now - 600,
		ExpiresAt: now - 300,
	}
	active := &model.VerificationCode{
		ID:        service.NewID(),
		Email:     email,
		Purpose:   model.CodePurposeSignup,
		CodeHash:  "hash-new",
		Ctime:     now,
		ExpiresAt: now + 300,
	}
	require.NoError(t, codes.Create(context.Background(), expired))
	require.NoError(t, codes.Create(context.Background(), active))

	deleted, err := codes.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.GreaterOrEqual(t, deleted, int64(1))

	latest, err := codes.LatestByEmail(context.Background(), email, model.CodePurposeSignup)
	require.NoError(t, err)
	require.Equal(t, active.ID, latest.ID)
}
