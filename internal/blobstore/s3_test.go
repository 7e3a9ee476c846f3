package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeS3 struct {
	getBody []byte
	getErr  error
	putErr  error
	etag    string

	lastPut      *s3.PutObjectInput
	putBody      []byte
	sawDeadline  bool
	lastGetInput *s3.GetObjectInput
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastGetInput = in
	_, f.sawDeadline = ctx.Deadline()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.getBody))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastPut = in
	_, f.sawDeadline = ctx.Deadline()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putBody, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{ETag: aws.String(f.etag)}, nil
}

func TestS3Store_Get(t *testing.T) {
	f := &fakeS3{getBody: []byte(`[{"gduns":"100"}]`)}
	st := NewS3Store(f, "installBase", 0)

	body, err := st.Get(context.Background(), "PNWandNCAcustomers.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `[{"gduns":"100"}]` {
		t.Fatalf("body = %s", body)
	}
	if aws.ToString(f.lastGetInput.Bucket) != "installBase" || aws.ToString(f.lastGetInput.Key) != "PNWandNCAcustomers.json" {
		t.Fatalf("input = %+v", f.lastGetInput)
	}
	if f.sawDeadline {
		t.Fatal("zero timeout must not set a deadline")
	}
}

func TestS3Store_GetNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"typed NoSuchKey", &s3types.NoSuchKey{}},
		{"typed NotFound", &s3types.NotFound{}},
		{"generic api code", &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st := NewS3Store(&fakeS3{getErr: c.err}, "installBase", 0)
			_, err := st.Get(context.Background(), "200.json")
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("err = %T %v, want *NotFoundError", err, err)
			}
			if nf.Key != "200.json" || nf.Bucket != "installBase" {
				t.Fatalf("nf = %+v", nf)
			}
		})
	}
}

func TestS3Store_GetTransportError(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "AccessDenied"}
	st := NewS3Store(&fakeS3{getErr: cause}, "installBase", time.Second)

	_, err := st.Get(context.Background(), "100.json")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T, want *TransportError", err)
	}
	if te.Op != "get" || te.Key != "100.json" || !errors.Is(err, cause) {
		t.Fatalf("te = %+v", te)
	}
}

func TestS3Store_Put(t *testing.T) {
	f := &fakeS3{etag: `"9b2cf535f27731c974343645a3985328"`}
	st := NewS3Store(f, "munger-insights", 5*time.Second)

	etag, err := st.Put(context.Background(), "100.SNSO.3", []byte(`[]`), "json")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if etag != "9b2cf535f27731c974343645a3985328" {
		t.Fatalf("etag = %q", etag)
	}
	if aws.ToString(f.lastPut.ContentType) != "json" || aws.ToInt64(f.lastPut.ContentLength) != 2 {
		t.Fatalf("put input = %+v", f.lastPut)
	}
	if string(f.putBody) != "[]" {
		t.Fatalf("body = %s", f.putBody)
	}
	if !f.sawDeadline {
		t.Fatal("timeout not applied")
	}
}

func TestS3Store_PutError(t *testing.T) {
	st := NewS3Store(&fakeS3{putErr: errors.New("connection reset")}, "munger-insights", 0)
	_, err := st.Put(context.Background(), "100.SNSO.3", nil, "json")
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "put" {
		t.Fatalf("err = %v", err)
	}
}
