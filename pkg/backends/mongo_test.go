package backends

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestMongoConfigURI verifies connection string assembly
func TestMongoConfigURI(t *testing.T) {
	cases := []struct {
		name string
		cfg  MongoConfig
		want string
	}{
		{"defaults", MongoConfig{}, "mongodb://localhost:27017"},
		{"host and port", MongoConfig{Host: "db.internal", Port: 27018}, "mongodb://db.internal:27018"},
		{"host only", MongoConfig{Host: "db.internal"}, "mongodb://db.internal:27017"},
		{"explicit URI wins", MongoConfig{URI: "mongodb://a,b/?replicaSet=rs0", Host: "ignored"}, "mongodb://a,b/?replicaSet=rs0"},
	}
	for _, tc := range cases {
		if got := tc.cfg.uri(); got != tc.want {
			t.Errorf("%s: uri() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// TestMongoConfigClientOptions verifies credentials and timeouts are applied
func TestMongoConfigClientOptions(t *testing.T) {
	cfg := MongoConfig{
		Username:       "logger",
		Password:       "secret",
		ConnectTimeout: 250 * time.Millisecond,
	}
	opts := cfg.clientOptions()

	if opts.Auth == nil {
		t.Fatal("credentials not applied")
	}
	if opts.Auth.Username != "logger" || opts.Auth.AuthSource != "admin" {
		t.Errorf("auth = %+v, want logger/admin", opts.Auth)
	}
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != 250*time.Millisecond {
		t.Errorf("connect timeout not applied: %v", opts.ConnectTimeout)
	}

	// No credentials means no auth block at all.
	var anonCfg MongoConfig
	if anon := anonCfg.clientOptions(); anon.Auth != nil {
		t.Error("auth applied without a username")
	}
}

// TestNewMongoStoreValidation verifies construction fails fast on missing
// names before any connection is attempted.
func TestNewMongoStoreValidation(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{Database: "logs"}); err == nil {
		t.Error("expected error for missing collection")
	}
	if _, err := NewMongoStore(context.Background(), MongoConfig{Collection: "logs"}); err == nil {
		t.Error("expected error for missing database")
	}
}

// TestIsNamespaceExists verifies capped provisioning tolerance
func TestIsNamespaceExists(t *testing.T) {
	if !isNamespaceExists(mongo.CommandError{Code: 48, Name: "NamespaceExists"}) {
		t.Error("code 48 not recognized")
	}
	if isNamespaceExists(mongo.CommandError{Code: 11000, Name: "DuplicateKey"}) {
		t.Error("unrelated command error recognized as namespace exists")
	}
	if isNamespaceExists(errors.New("not a command error")) {
		t.Error("plain error recognized as namespace exists")
	}
}

// TestMongoStoreIntegration exercises a live server when one is available.
// Set MONGOLOG_TEST_MONGO_URI (e.g. mongodb://localhost:27017) to enable.
func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("MONGOLOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MONGOLOG_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMongoStore(ctx, MongoConfig{
		URI:        uri,
		Database:   "mongolog_test",
		Collection: "logs",
		Capped:     true,
		CappedMax:  1000,
		CappedSize: 1 << 20,
	})
	if err != nil {
		t.Fatalf("NewMongoStore failed: %v", err)
	}
	defer store.Close(ctx)

	if err := store.InsertOne(ctx, bson.M{"message": "single"}); err != nil {
		t.Errorf("InsertOne failed: %v", err)
	}
	if err := store.InsertMany(ctx, []bson.M{{"message": "a"}, {"message": "b"}}); err != nil {
		t.Errorf("InsertMany failed: %v", err)
	}

	stats := store.Stats()
	if stats.DocumentCount != 3 {
		t.Errorf("DocumentCount = %d, want 3", stats.DocumentCount)
	}
	if stats.Target != "mongolog_test.logs" {
		t.Errorf("Target = %q", stats.Target)
	}
}
