package objectstore

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

func TestTranslateMinIOError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	if err := translateMinIOError(notFound); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	noBucket := minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}
	if err := translateMinIOError(noBucket); errors.Is(err, ErrNotFound) {
		t.Fatalf("missing bucket must not read as missing key")
	}

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	if err := translateMinIOError(denied); errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected ErrNotFound for %v", err)
	}

	if translateMinIOError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestTranslateS3Error(t *testing.T) {
	if err := translateS3Error(&types.NoSuchKey{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := translateS3Error(&smithy.GenericAPIError{Code: "NoSuchKey"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for generic code, got %v", err)
	}
	if err := translateS3Error(&smithy.GenericAPIError{Code: "AccessDenied"}); errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected ErrNotFound for %v", err)
	}
}

func TestCopySourceEscapesSegments(t *testing.T) {
	got := copySource("docs", "licenses/LIC 1/RC book#2.pdf")
	if got != "docs/licenses/LIC%201/RC%20book%232.pdf" {
		t.Fatalf("unexpected copy source %q", got)
	}
}

func TestS3PresignIsTimeBoxed(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  awscreds.NewStaticCredentialsProvider("access", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
	})
	store := NewS3Store(client, "docs")

	u, err := store.PresignGet(context.Background(), "licenses/LIC-1/a.pdf", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet returned error: %v", err)
	}
	if !strings.Contains(u, "X-Amz-Expires=900") {
		t.Fatalf("expected 900s expiry in %q", u)
	}
	if !strings.Contains(u, "/docs/licenses/LIC-1/a.pdf") {
		t.Fatalf("expected object path in %q", u)
	}
}

func TestMinIOPresignIsTimeBoxed(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  miniocreds.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("minio.New: %v", err)
	}
	store := NewMinIOStore(client, "docs")

	u, err := store.PresignGet(context.Background(), "licenses/LIC-1/a.pdf", time.Hour)
	if err != nil {
		t.Fatalf("PresignGet returned error: %v", err)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Fatalf("expected 3600s expiry in %q", u)
	}
	if !strings.Contains(u, "licenses/LIC-1/a.pdf") {
		t.Fatalf("expected object key in %q", u)
	}
}
