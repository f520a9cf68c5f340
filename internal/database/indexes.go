package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"carrete-admin/internal/store"
)

func ensureIndex(db *mongo.Database, log *zap.Logger, collection string, model mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := ""
	if model.Options != nil && model.Options.Name != nil {
		name = *model.Options.Name
	}

	log.Debug("creating index", zap.String("collection", collection), zap.String("index", name))
	if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		log.Error("index creation failed", zap.String("collection", collection), zap.String("index", name), zap.Error(err))
		return err
	}
	log.Info("index ready", zap.String("collection", collection), zap.String("index", name))
	return nil
}

func EnsureIdentityIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensureIndex(db, log, store.CollAccounts, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	})
}

func EnsureSessionIndexes(db *mongo.Database, log *zap.Logger) error {
	if err := ensureIndex(db, log, store.CollSessions, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetName("uid_index"),
	}); err != nil {
		return err
	}
	// Expired sessions are useless; let the server drop them.
	return ensureIndex(db, log, store.CollSessions, mongo.IndexModel{
		Keys: bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().
			SetName("expiresAt_ttl").
			SetExpireAfterSeconds(0),
	})
}

func EnsureResetIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensureIndex(db, log, store.CollResets, mongo.IndexModel{
		Keys: bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().
			SetName("expiresAt_ttl").
			SetExpireAfterSeconds(0),
	})
}

func EnsureOrderIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensureIndex(db, log, store.CollOrders, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	})
}

func EnsureCustomerIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensureIndex(db, log, store.CollUsers, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	})
}

func EnsureAdminIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensureIndex(db, log, store.CollAdmin, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	})
}

// EnsureIndexes creates every index the dashboard relies on. Failures are
// logged and returned together; a missing index is not fatal at startup.
func EnsureIndexes(db *mongo.Database, log *zap.Logger) []error {
	var errs []error
	for _, ensure := range []func(*mongo.Database, *zap.Logger) error{
		EnsureIdentityIndexes,
		EnsureSessionIndexes,
		EnsureResetIndexes,
		EnsureOrderIndexes,
		EnsureCustomerIndexes,
		EnsureAdminIndexes,
	} {
		if err := ensure(db, log); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
