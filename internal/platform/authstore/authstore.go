// Package authstore is the client for the separate auth/object-storage
// provider: Firebase Authentication accounts and Cloud Storage objects. It
// implements blobstore.BlobStore for lab report attachments.
package authstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/blobstore"
	"github.com/carelink/carelink/internal/platform/fbapp"
)

// ObjectPrefix is prepended to every attachment object name.
const ObjectPrefix = "attachments/"

// Account is a provider-side user account.
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Disabled    bool   `json:"disabled"`
}

// Client talks to the auth/storage provider. Without usable settings it runs
// in stub mode and every call fails with backend.ErrNotConfigured.
type Client struct {
	auth   *auth.Client
	bucket *gcs.BucketHandle
}

func Stub() *Client {
	return &Client{}
}

// Open connects to the provider, or returns a stub when the settings are
// absent or placeholders. Storage is optional: without a bucket only the
// account calls work.
func Open(ctx context.Context, s fbapp.Settings) (*Client, error) {
	if !s.Configured() {
		return Stub(), nil
	}
	app, err := fbapp.New(ctx, s)
	if err != nil {
		return nil, err
	}
	return FromApp(ctx, app, s.StorageBucket != "")
}

func FromApp(ctx context.Context, app *firebase.App, withStorage bool) (*Client, error) {
	ac, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("open auth client: %w", err)
	}
	c := &Client{auth: ac}
	if !withStorage {
		return c, nil
	}
	sc, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open storage client: %w", err)
	}
	bucket, err := sc.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("open default bucket: %w", err)
	}
	c.bucket = bucket
	return c, nil
}

// IsStub reports whether no auth backend is attached.
func (c *Client) IsStub() bool { return c.auth == nil }

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// ErrAccountNotFound is returned by LookupUser for an unknown email.
var ErrAccountNotFound = errors.New("account not found")

func (c *Client) LookupUser(ctx context.Context, email string) (*Account, error) {
	if c.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	u, err := c.auth.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, fmt.Errorf("%s: %w", email, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}
	return toAccount(u), nil
}

func (c *Client) CreateUser(ctx context.Context, email, password, displayName string) (*Account, error) {
	if c.IsStub() {
		return nil, backend.ErrNotConfigured
	}
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(true)
	u, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", email, err)
	}
	return toAccount(u), nil
}

// EnsureUser returns the existing account for email or creates one. The bool
// reports whether an account was created.
func (c *Client) EnsureUser(ctx context.Context, email, password, displayName string) (*Account, bool, error) {
	acct, err := c.LookupUser(ctx, email)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}
	acct, err = c.CreateUser(ctx, email, password, displayName)
	if err != nil {
		return nil, false, err
	}
	return acct, true, nil
}

func toAccount(u *auth.UserRecord) *Account {
	a := &Account{Disabled: u.Disabled}
	if u.UserInfo != nil {
		a.UID = u.UID
		a.Email = u.Email
		a.DisplayName = u.DisplayName
	}
	return a
}

// ---------------------------------------------------------------------------
// Attachments
// ---------------------------------------------------------------------------

var _ blobstore.BlobStore = (*Client)(nil)

func (c *Client) object(id string) (*gcs.ObjectHandle, error) {
	if c.bucket == nil {
		return nil, backend.ErrNotConfigured
	}
	return c.bucket.Object(ObjectPrefix + id), nil
}

func (c *Client) Upload(ctx context.Context, meta blobstore.BlobMetadata, content io.Reader) (*blobstore.BlobMetadata, error) {
	if c.bucket == nil {
		return nil, backend.ErrNotConfigured
	}
	meta, data, err := blobstore.Prepare(meta, content)
	if err != nil {
		return nil, err
	}
	obj, _ := c.object(meta.ID)

	w := obj.NewWriter(ctx)
	w.ContentType = meta.ContentType
	w.Metadata = encodeMetadata(meta)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return nil, fmt.Errorf("write object %s: %w", meta.ID, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize object %s: %w", meta.ID, err)
	}
	return &meta, nil
}

func (c *Client) Download(ctx context.Context, id string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	meta, err := c.GetMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, _ := c.object(id)
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, nil, mapStorageErr(id, err)
	}
	return r, meta, nil
}

func (c *Client) GetMetadata(ctx context.Context, id string) (*blobstore.BlobMetadata, error) {
	obj, err := c.object(id)
	if err != nil {
		return nil, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, mapStorageErr(id, err)
	}
	meta := decodeMetadata(id, attrs.ContentType, attrs.Size, attrs.Created, attrs.Metadata)
	return &meta, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	obj, err := c.object(id)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil {
		return mapStorageErr(id, err)
	}
	return nil
}

func mapStorageErr(id string, err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return blobstore.ErrBlobNotFound
	}
	return fmt.Errorf("object %s: %w", id, err)
}

func encodeMetadata(meta blobstore.BlobMetadata) map[string]string {
	return map[string]string{
		"file_name":     meta.FileName,
		"lab_report_id": meta.LabReportID,
		"patient_id":    meta.PatientID,
		"hash":          meta.Hash,
		"size":          strconv.FormatInt(meta.Size, 10),
	}
}

func decodeMetadata(id, contentType string, size int64, created time.Time, md map[string]string) blobstore.BlobMetadata {
	return blobstore.BlobMetadata{
		ID:          id,
		FileName:    md["file_name"],
		ContentType: contentType,
		Size:        size,
		LabReportID: md["lab_report_id"],
		PatientID:   md["patient_id"],
		Hash:        md["hash"],
		CreatedAt:   created.UTC(),
	}
}
