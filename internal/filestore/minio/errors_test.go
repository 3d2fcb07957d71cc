package minio

import (
	"context"
	"errors"
	"net/http"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/fdw/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"no such key", miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"no such bucket", miniogo.ErrorResponse{Code: "NoSuchBucket"}, errs.ErrKindNotFound},
		{"access denied", miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied},
		{"bad key id", miniogo.ErrorResponse{Code: "InvalidAccessKeyId"}, errs.ErrKindPermissionDenied},
		{"bad bucket name", miniogo.ErrorResponse{Code: "InvalidBucketName"}, errs.ErrKindInvalidInput},
		{"slow down", miniogo.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, errs.ErrKindTimeout},
		{"status only 404", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"status only 401", miniogo.ErrorResponse{StatusCode: http.StatusUnauthorized}, errs.ErrKindPermissionDenied},
		{"network", errors.New("dial tcp: no route to host"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "failed")
			assert.Equal(t, tt.want, got.Kind)
		})
	}

	assert.Nil(t, mapError(nil, "x"))
}
