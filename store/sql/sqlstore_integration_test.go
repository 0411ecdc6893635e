package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-servicebroker/core"
	brokermigrations "github.com/goliatone/go-servicebroker/migrations"
	sqlstore "github.com/goliatone/go-servicebroker/store/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-servicebroker-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"service_instances",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "service_instances" {
		t.Fatalf("expected service_instances table, got %q", tableName)
	}
}

func TestInstanceStore_FindOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.InstanceStore()
	if store == nil {
		t.Fatalf("expected instance store from factory")
	}

	first, err := store.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
		ServiceInstanceID: "svc_1",
		OrgID:             "org_1",
		SpaceID:           "space_1",
	})
	if err != nil {
		t.Fatalf("first find-or-create: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected first call to create the row")
	}

	second, err := store.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
		ServiceInstanceID: "svc_1",
		OrgID:             "org_other",
		SpaceID:           "space_other",
	})
	if err != nil {
		t.Fatalf("second find-or-create: %v", err)
	}
	if second.Created {
		t.Fatalf("expected replay to find the winning row")
	}
	if second.Instance.OrgID != "org_1" || second.Instance.SpaceID != "space_1" {
		t.Fatalf("expected winning row attributes back, got %+v", second.Instance)
	}

	var rowCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM service_instances WHERE service_instance_id = ?",
		"svc_1",
	).Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count instance rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected a single persisted row, got %d", rowCount)
	}
}

func TestInstanceStore_ConcurrentFindOrCreate(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.InstanceStore()

	const callers = 8
	createdCount := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
				ServiceInstanceID: "svc_race",
				OrgID:             "org_1",
				SpaceID:           "space_1",
			})
			if err != nil {
				t.Errorf("concurrent find-or-create: %v", err)
				return
			}
			createdCount <- result.Created
		}()
	}
	wg.Wait()
	close(createdCount)

	created := 0
	for wasCreated := range createdCount {
		if wasCreated {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one creator, got %d", created)
	}
}

func TestInstanceStore_DeleteRestrictedByBindings(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	instances := factory.InstanceStore()
	bindings := factory.BindingStore()

	if _, err := instances.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
		ServiceInstanceID: "svc_1", OrgID: "org_1", SpaceID: "space_1",
	}); err != nil {
		t.Fatalf("seed instance: %v", err)
	}
	if _, err := bindings.FindOrCreate(ctx, core.FindOrCreateBindingInput{
		BindingID:         "bind_1",
		AppID:             "app_1",
		ServiceInstanceID: "svc_1",
		Username:          "user_1",
		PasswordHash:      "hash_1",
	}); err != nil {
		t.Fatalf("seed binding: %v", err)
	}

	if _, err := instances.Delete(ctx, "svc_1"); !errors.Is(err, core.ErrInstanceHasBindings) {
		t.Fatalf("expected ErrInstanceHasBindings, got %v", err)
	}

	if _, err := bindings.Delete(ctx, "bind_1"); err != nil {
		t.Fatalf("delete binding: %v", err)
	}
	deleted, err := instances.Delete(ctx, "svc_1")
	if err != nil {
		t.Fatalf("delete instance after unbind: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one deleted row, got %d", deleted)
	}

	deleted, err = instances.Delete(ctx, "svc_1")
	if err != nil {
		t.Fatalf("delete absent instance: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected zero rows for absent instance, got %d", deleted)
	}
}

func TestBindingStore_FindOrCreateWritesCredentialAtomically(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	instances := factory.InstanceStore()
	bindings := factory.BindingStore()

	if _, err := instances.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
		ServiceInstanceID: "svc_1", OrgID: "org_1", SpaceID: "space_1",
	}); err != nil {
		t.Fatalf("seed instance: %v", err)
	}

	first, err := bindings.FindOrCreate(ctx, core.FindOrCreateBindingInput{
		BindingID:         "bind_1",
		AppID:             "app_1",
		ServiceInstanceID: "svc_1",
		Username:          "user_1",
		PasswordHash:      "hash_1",
	})
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected first call to create the binding")
	}

	credential, err := bindings.FindCredentialByUsername(ctx, "user_1")
	if err != nil {
		t.Fatalf("find credential by username: %v", err)
	}
	if credential.BindingID != "bind_1" || credential.PasswordHash != "hash_1" {
		t.Fatalf("unexpected credential row %+v", credential)
	}

	replay, err := bindings.FindOrCreate(ctx, core.FindOrCreateBindingInput{
		BindingID:         "bind_1",
		AppID:             "app_1",
		ServiceInstanceID: "svc_1",
		Username:          "user_replay",
		PasswordHash:      "hash_replay",
	})
	if err != nil {
		t.Fatalf("replayed bind: %v", err)
	}
	if replay.Created {
		t.Fatalf("expected replay to find the winning row")
	}
	if !replay.Binding.Matches("app_1", "svc_1") {
		t.Fatalf("expected winning binding attributes back, got %+v", replay.Binding)
	}
	if _, err := bindings.FindCredentialByUsername(ctx, "user_replay"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected replay credential to be discarded, got %v", err)
	}

	count, err := bindings.CountActiveForApplication(ctx, "app_1")
	if err != nil {
		t.Fatalf("count active bindings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one active binding for app_1, got %d", count)
	}
}

func TestBindingStore_FindOrCreateRequiresInstance(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	bindings := factory.BindingStore()

	_, err = bindings.FindOrCreate(ctx, core.FindOrCreateBindingInput{
		BindingID:         "bind_1",
		AppID:             "app_1",
		ServiceInstanceID: "svc_absent",
		Username:          "user_1",
		PasswordHash:      "hash_1",
	})
	if !errors.Is(err, core.ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
	if _, err := bindings.FindCredentialByUsername(ctx, "user_1"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected no credential row after rolled back insert, got %v", err)
	}
}

func TestBindingStore_DeleteRemovesCredential(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	instances := factory.InstanceStore()
	bindings := factory.BindingStore()

	if _, err := instances.FindOrCreate(ctx, core.FindOrCreateInstanceInput{
		ServiceInstanceID: "svc_1", OrgID: "org_1", SpaceID: "space_1",
	}); err != nil {
		t.Fatalf("seed instance: %v", err)
	}
	if _, err := bindings.FindOrCreate(ctx, core.FindOrCreateBindingInput{
		BindingID:         "bind_1",
		AppID:             "app_1",
		ServiceInstanceID: "svc_1",
		Username:          "user_1",
		PasswordHash:      "hash_1",
	}); err != nil {
		t.Fatalf("seed binding: %v", err)
	}

	deleted, err := bindings.Delete(ctx, "bind_1")
	if err != nil {
		t.Fatalf("delete binding: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one deleted row, got %d", deleted)
	}
	if _, err := bindings.Get(ctx, "bind_1"); !errors.Is(err, core.ErrBindingNotFound) {
		t.Fatalf("expected ErrBindingNotFound after delete, got %v", err)
	}
	if _, err := bindings.FindCredentialByUsername(ctx, "user_1"); !errors.Is(err, core.ErrCredentialNotFound) {
		t.Fatalf("expected credential to be removed with the binding, got %v", err)
	}

	deleted, err = bindings.Delete(ctx, "bind_1")
	if err != nil {
		t.Fatalf("delete absent binding: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected zero rows for absent binding, got %d", deleted)
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:broker-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = brokermigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != brokermigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, brokermigrations.WithValidationTargets(brokermigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
