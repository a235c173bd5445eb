package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	bundlesCollection = "bundles"
	// bundleDocLayout is RFC3339 with a fixed nanosecond width so document
	// IDs sort in time order.
	bundleDocLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// FirestoreProvider implements Database using Google Cloud Firestore.
// Each bundle is a document in the "bundles" collection whose ID is the
// GeneratedAt time in UTC.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured. An empty project
// ID is allowed since the client can detect it.
func (f *FirestoreProvider) Validate() error {
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func bundleDocID(t time.Time) string {
	return t.UTC().Format(bundleDocLayout)
}

// PutBundle stores the bundle as a JSON blob.
func (f *FirestoreProvider) PutBundle(ctx context.Context, bundle types.Bundle) error {
	if bundle.GeneratedAt.IsZero() {
		return fmt.Errorf("bundle missing generatedAt")
	}
	jsonBytes, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	_, err = f.client.Collection(bundlesCollection).Doc(bundleDocID(bundle.GeneratedAt)).Set(ctx, map[string]interface{}{
		"json":        string(jsonBytes),
		"generatedAt": bundle.GeneratedAt,
		"id":          bundle.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to put bundle: %w", err)
	}
	return nil
}

// GetLatestBundle returns the bundle with the latest generatedAt.
func (f *FirestoreProvider) GetLatestBundle(ctx context.Context) (types.Bundle, error) {
	iter := f.client.Collection(bundlesCollection).
		OrderBy("generatedAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return types.Bundle{}, ErrBundleNotFound
	}
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Bundle{}, ErrBundleNotFound
		}
		return types.Bundle{}, fmt.Errorf("failed to get latest bundle doc: %w", err)
	}
	return decodeBundle(ctx, doc)
}

// GetBundleHistory uses document ID range queries so only the requested
// range is read.
func (f *FirestoreProvider) GetBundleHistory(ctx context.Context, start, end time.Time) ([]types.Bundle, error) {
	coll := f.client.Collection(bundlesCollection)
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(bundleDocID(start))).
		Where(firestore.DocumentID, "<", coll.Doc(bundleDocID(end))).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var bundles []types.Bundle
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating bundles: %w", err)
		}
		b, err := decodeBundle(ctx, doc)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

func decodeBundle(ctx context.Context, doc *firestore.DocumentSnapshot) (types.Bundle, error) {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "bundle doc missing json", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
		return types.Bundle{}, fmt.Errorf("bundle doc %s missing 'json' field: %w", doc.Ref.ID, err)
	}

	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "bundle doc json not string", slog.String("docID", doc.Ref.ID))
		return types.Bundle{}, fmt.Errorf("bundle doc %s 'json' field is not string", doc.Ref.ID)
	}

	var b types.Bundle
	if err := json.Unmarshal([]byte(jsonStr), &b); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal bundle", slog.String("docID", doc.Ref.ID), slog.Any("err", err))
		return types.Bundle{}, fmt.Errorf("failed to unmarshal bundle (id=%s): %w", doc.Ref.ID, err)
	}
	return b, nil
}
