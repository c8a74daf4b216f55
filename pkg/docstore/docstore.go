// Package docstore provides per-user document presence queries over an
// Azure Blob Storage container. Documents are keyed by user and document
// type: a blob under "<user_id>/<doc_type>/" means the user has supplied
// at least one document of that type.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"golang.org/x/sync/errgroup"

	"github.com/fieldline/supervisor/pkg/lifecycle"
)

// Store answers per-user document presence queries.
type Store interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// CheckPresence reports, for each requested document type, whether the
	// user has at least one stored document of that type. The returned map
	// has an entry for every requested type. Returns ErrUnavailable when
	// the storage service cannot be reached after retry.
	CheckPresence(ctx context.Context, userID string, docTypes []string) (map[string]bool, error)
	// Exists reports whether the user has at least one document of the
	// given type.
	Exists(ctx context.Context, userID, docType string) (bool, error)
}

type azure struct {
	client    *azblob.Client
	container string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Store from the given configuration. The Azure client is
// constructed eagerly but no connection is made until Start or the first query.
func New(cfg *Config, logger *slog.Logger) (Store, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create docstore client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		timeout:   cfg.TimeoutDuration(),
		logger:    logger.With("system", "docstore"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting docstore")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("docstore container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("docstore container ready", "container", a.container)
	})

	return nil
}

func (a *azure) CheckPresence(ctx context.Context, userID string, docTypes []string) (map[string]bool, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	present := make([]bool, len(docTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, docType := range docTypes {
		g.Go(func() error {
			ok, err := a.exists(gctx, userID, docType)
			if err != nil {
				return err
			}
			present[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(docTypes))
	for i, docType := range docTypes {
		result[docType] = present[i]
	}
	return result, nil
}

func (a *azure) Exists(ctx context.Context, userID, docType string) (bool, error) {
	if err := validateUserID(userID); err != nil {
		return false, err
	}
	return a.exists(ctx, userID, docType)
}

// exists lists at most one blob under the user/type prefix, retrying once
// on a transient failure. Each attempt carries its own timeout.
func (a *azure) exists(ctx context.Context, userID, docType string) (bool, error) {
	ok, err := a.listOne(ctx, userID, docType)
	if err == nil {
		return ok, nil
	}
	if ctx.Err() != nil || !transient(err) {
		return false, err
	}

	a.logger.Warn("presence query failed, retrying",
		"user_id", userID,
		"doc_type", docType,
		"error", err,
	)

	ok, err = a.listOne(ctx, userID, docType)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return ok, nil
}

func (a *azure) listOne(ctx context.Context, userID, docType string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prefix := userID + "/" + docType + "/"
	maxResults := int32(1)

	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &maxResults,
	})

	if !pager.More() {
		return false, nil
	}

	page, err := pager.NextPage(ctx)
	if err != nil {
		return false, fmt.Errorf("list prefix %s: %w", prefix, err)
	}

	return len(page.Segment.BlobItems) > 0, nil
}

// transient reports whether err is worth a single retry: timeouts and
// server-side failures qualify, client errors do not.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 500 || respErr.StatusCode == 429
	}

	return true
}

func validateUserID(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if strings.Contains(userID, "..") || strings.Contains(userID, "/") {
		return ErrInvalidUserID
	}
	return nil
}
