package asset

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/utils/safe"
)

// ErrNotFound is returned when no asset exists at the requested path
var ErrNotFound = errors.New("asset not found")

// IndexFile is served for the root path
const IndexFile = "index.html"

// Asset is a static file of the client page
type Asset struct {
	Name        string
	ContentType string
	Body        []byte
}

// Store looks up static assets by request path
type Store interface {
	Open(ctx context.Context, urlPath string) (*Asset, error)
}

// cleanName maps a request path to an asset name. "/" and "" map to the index file; paths that
// escape the root are rejected.
func cleanName(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return IndexFile, true
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

func contentType(name, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type fsStore struct {
	fsys fs.FS
}

// NewFS creates a Store serving files of fsys, typically the embedded client page
func NewFS(fsys fs.FS) Store {
	return &fsStore{fsys: fsys}
}

func (x *fsStore) Open(ctx context.Context, urlPath string) (*Asset, error) {
	name, ok := cleanName(urlPath)
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "invalid asset path", goerr.V("path", urlPath))
	}

	stat, err := fs.Stat(x.fsys, name)
	if err != nil || stat.IsDir() {
		return nil, goerr.Wrap(ErrNotFound, "asset does not exist", goerr.V("path", urlPath))
	}

	body, err := fs.ReadFile(x.fsys, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read asset", goerr.V("name", name))
	}

	return &Asset{
		Name:        name,
		ContentType: contentType(name, ""),
		Body:        body,
	}, nil
}

type bucketStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewBucket creates a Store serving objects of a Cloud Storage bucket under prefix
func NewBucket(ctx context.Context, bucket, prefix string) (Store, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &bucketStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (x *bucketStore) Open(ctx context.Context, urlPath string) (*Asset, error) {
	name, ok := cleanName(urlPath)
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "invalid asset path", goerr.V("path", urlPath))
	}

	object := x.prefix + name
	r, err := x.client.Bucket(x.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "asset does not exist", goerr.V("bucket", x.bucket), goerr.V("object", object))
		}
		return nil, goerr.Wrap(err, "failed to open asset", goerr.V("bucket", x.bucket), goerr.V("object", object))
	}
	defer safe.Close(ctx, r)

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read asset", goerr.V("bucket", x.bucket), goerr.V("object", object))
	}

	return &Asset{
		Name:        name,
		ContentType: contentType(name, r.Attrs.ContentType),
		Body:        body,
	}, nil
}
