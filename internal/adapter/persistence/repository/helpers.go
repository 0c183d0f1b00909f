package repository

import (
	"errors"
	"os"
	"strconv"
	"time"

	"mechmarket/pkg/apperrors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// conflictOr maps DynamoDB's conditional failures onto the shared conflict
// sentinel. A cancelled transaction counts: every transaction here is
// condition-guarded, so cancellation means a version check lost the race.
func conflictOr(err error) error {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return apperrors.ErrConflict
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return apperrors.ErrConflict
			}
		}
	}
	return err
}

// Timestamps are stored as fixed-width RFC3339 UTC strings so that the
// deadline filter expressions can compare them lexicographically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
