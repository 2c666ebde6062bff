package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "tokens"

// tokenDoc is stored per key, e.g. tokens/access_token
type tokenDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces the token collection, e.g. for tests sharing a database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collection = prefix + defaultCollection
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:     client,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) get(ctx context.Context, key string) (string, error) {
	doc, err := f.client.Collection(f.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get token from firestore", goerr.V("key", key))
	}

	var v tokenDoc
	if err := doc.DataTo(&v); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal token document", goerr.V("key", key))
	}
	return v.Value, nil
}

func (f *Firestore) put(ctx context.Context, key, value string) error {
	if value == "" {
		return goerr.New("empty token value", goerr.V("key", key))
	}

	doc := tokenDoc{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.client.Collection(f.collection).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put token to firestore", goerr.V("key", key))
	}
	return nil
}

func (f *Firestore) GetAccessToken(ctx context.Context) (string, error) {
	return f.get(ctx, model.AccessTokenKey)
}

func (f *Firestore) GetRefreshToken(ctx context.Context) (string, error) {
	return f.get(ctx, model.RefreshTokenKey)
}

func (f *Firestore) PutAccessToken(ctx context.Context, token string) error {
	return f.put(ctx, model.AccessTokenKey, token)
}

func (f *Firestore) PutRefreshToken(ctx context.Context, token string) error {
	return f.put(ctx, model.RefreshTokenKey, token)
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
