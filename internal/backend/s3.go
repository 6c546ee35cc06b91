package backend

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3Operator addresses an S3-compatible endpoint via minio-go.
type s3Operator struct {
	client *minio.Client
	bucket string
	root   string
}

func newS3Operator(config map[string]string) (Operator, error) {
	endpoint := config["endpoint"]
	if endpoint == "" {
		return nil, invalidArgument("s3 backend requires config[endpoint]")
	}
	bucket := config["bucket"]
	if bucket == "" {
		return nil, invalidArgument("s3 backend requires config[bucket]")
	}

	secure := !strings.HasPrefix(endpoint, "http://")
	trimmed := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	var creds *credentials.Credentials
	if ak, sk := config["access_key"], config["secret_key"]; ak != "" || sk != "" {
		creds = credentials.NewStaticV4(ak, sk, config["session_token"])
	} else {
		creds = credentials.NewStaticV4("", "", "")
	}

	client, err := minio.New(trimmed, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: config["region"],
	})
	if err != nil {
		return nil, internal(err, "failed to construct s3 client")
	}

	return &s3Operator{
		client: client,
		bucket: bucket,
		root:   strings.TrimPrefix(config["root"], "/"),
	}, nil
}

func (o *s3Operator) joinRoot(path string) string {
	path = strings.TrimPrefix(path, "/")
	if o.root == "" {
		return path
	}
	if path == "" {
		return o.root
	}
	return o.root + "/" + path
}

func (o *s3Operator) Check(ctx context.Context) error {
	_, err := o.client.BucketExists(ctx, o.bucket)
	if err != nil {
		return internal(err, "s3 reachability check failed")
	}
	return nil
}

func (o *s3Operator) List(ctx context.Context, path string) ([]Entry, error) {
	prefix := o.joinRoot(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	entries := make([]Entry, 0)
	for obj := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, internal(obj.Err, "s3 list failed")
		}
		rel := strings.TrimPrefix(obj.Key, o.root)
		rel = "/" + strings.TrimPrefix(rel, "/")

		if strings.HasSuffix(obj.Key, "/") {
			entries = append(entries, Entry{Path: rel, Kind: EntryDirectory})
			continue
		}
		entries = append(entries, Entry{Path: rel, Kind: EntryFile, Size: obj.Size})
	}
	return entries, nil
}

func (o *s3Operator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.joinRoot(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, internal(err, "s3 get object failed")
	}
	return obj, nil
}
