package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

// CodeCleanupJob purges expired and consumed verification codes.
type CodeCleanupJob struct {
	codes *repo.VerificationCodeRepo
}

func NewCodeCleanupJob(codes *repo.VerificationCodeRepo) *CodeCleanupJob {
	return &CodeCleanupJob{codes: codes}
}

func (j *CodeCleanupJob) Name() string {
	return "verification_code_cleanup"
}

func (j *CodeCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.codes.DeleteExpired(ctx, timeutil.NowUnix())
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("expired codes removed", zap.Int64("count", deleted))
	}
	return nil
}
