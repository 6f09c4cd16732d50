// Package docstore is the document-database client. It talks to Cloud
// Firestore and implements backend.Store with one collection per entity and
// one document per record, keyed by the record id.
package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/fbapp"
)

// Client is a Firestore-backed store. The zero value, and any client built
// from unusable settings, runs in stub mode.
type Client struct {
	fs *firestore.Client
}

// Stub returns a client whose every call fails with backend.ErrNotConfigured.
func Stub() *Client {
	return &Client{}
}

// Open connects to the project's Firestore database, or returns a stub when
// the settings are absent or placeholders.
func Open(ctx context.Context, s fbapp.Settings) (*Client, error) {
	if !s.Configured() {
		return Stub(), nil
	}
	app, err := fbapp.New(ctx, s)
	if err != nil {
		return nil, err
	}
	return FromApp(ctx, app)
}

func FromApp(ctx context.Context, app *firebase.App) (*Client, error) {
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}
	return &Client{fs: fs}, nil
}

func (c *Client) Name() string { return "docstore" }

// IsStub reports whether the client is running in stub mode.
func (c *Client) IsStub() bool { return c.fs == nil }

func (c *Client) List(ctx context.Context, collection string) ([]backend.Record, error) {
	if c.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	docs, err := c.fs.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list %s: %w", collection, err)
	}
	return toRecords(docs), nil
}

func (c *Client) Find(ctx context.Context, collection, field string, value any) ([]backend.Record, error) {
	if c.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	docs, err := c.fs.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s.%s: %w", collection, field, err)
	}
	return toRecords(docs), nil
}

func (c *Client) Insert(ctx context.Context, collection string, rec backend.Record) (string, error) {
	if c.IsStub() {
		return "", backend.ErrNotConfigured
	}
	rec = backend.Clone(rec)
	backend.Stamp(rec)
	if _, err := c.fs.Collection(collection).Doc(rec.ID()).Set(ctx, map[string]interface{}(rec)); err != nil {
		return "", fmt.Errorf("firestore insert %s: %w", collection, err)
	}
	return rec.ID(), nil
}

// Clear deletes every document of a collection one by one. A failure part way
// leaves the remaining documents in place.
func (c *Client) Clear(ctx context.Context, collection string) (int, error) {
	if c.IsStub() {
		return 0, backend.ErrNotConfigured
	}
	refs, err := c.fs.Collection(collection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("firestore list refs %s: %w", collection, err)
	}
	for i, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			return i, fmt.Errorf("firestore delete %s/%s: %w", collection, ref.ID, err)
		}
	}
	return len(refs), nil
}

func (c *Client) Close() error {
	if c.IsStub() {
		return nil
	}
	return c.fs.Close()
}

func toRecords(docs []*firestore.DocumentSnapshot) []backend.Record {
	out := make([]backend.Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toRecord(doc.Ref.ID, doc.Data()))
	}
	return out
}

// toRecord copies document data and fills "id" from the document name when
// the data does not carry one.
func toRecord(docID string, data map[string]interface{}) backend.Record {
	rec := make(backend.Record, len(data)+1)
	for k, v := range data {
		rec[k] = v
	}
	if rec.ID() == "" {
		rec["id"] = docID
	}
	return rec
}
