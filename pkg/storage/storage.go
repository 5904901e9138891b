// Package storage persists run artifacts (final screenshots) in Azure Blob
// Storage, keyed by job.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/lifecycle"
)

// MaxArtifactSize bounds artifact downloads.
const MaxArtifactSize = 32 << 20

// System stores and retrieves artifacts.
type System interface {
	// Start registers a startup hook that ensures the container exists.
	Start(lc *lifecycle.Coordinator) error
	// Key returns the storage key for a named artifact of a job.
	Key(jobID, name string) string
	// Put writes data at key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get reads the blob at key. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the blob at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at key.
	Exists(ctx context.Context, key string) (bool, error)
}

type azure struct {
	client    *azblob.Client
	cred      azcore.TokenCredential
	container string
	prefix    string
	logger    *slog.Logger
}

// New builds the blob client. Nothing is contacted until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	a := &azure{
		container: cfg.ContainerName,
		prefix:    cfg.Prefix,
		logger:    logger.With("system", "storage"),
	}

	if !cfg.UsesCredential() {
		client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		a.client = client
		return a, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create storage credential: %w", err)
	}

	client, err := azblob.NewClient(cfg.ServiceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	a.client = client
	a.cred = cred
	return a, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system", "container", a.container, "credential", a.cred != nil)

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return
		}
		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Key(jobID, name string) string {
	return path.Join(a.prefix, jobID, name)
}

func (a *azure) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadBuffer(ctx, a.container, key, data, opts); err != nil {
		return fmt.Errorf("upload artifact %s: %w", key, err)
	}
	return nil
}

func (a *azure) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download artifact %s: %w", key, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, MaxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", key, err)
	}
	if n > MaxArtifactSize {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete artifact %s: %w", key, err)
	}
	return nil
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	_, err := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check artifact %s: %w", key, err)
	}
	return true, nil
}

// ValidateKey rejects empty keys and keys with traversal segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}
