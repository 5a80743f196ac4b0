package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// connectMongo dials the cluster and verifies it with a ping.
func connectMongo(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	// Atlas occasionally fails TLS negotiation in some environments unless we
	// force TLS 1.2.
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// storeError classifies a driver failure as recoverable so handlers can tell
// callers to retry instead of treating it as fatal. Sentinel errors pass
// through untouched.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
