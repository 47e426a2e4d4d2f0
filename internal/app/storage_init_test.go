package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	if deps.users == nil || deps.items == nil || deps.orders == nil {
		t.Fatal("core repositories must be initialized for memory storage")
	}
	if deps.documents == nil || deps.sales == nil || deps.outbox == nil {
		t.Fatal("document/sales/outbox repositories must be initialized for memory storage")
	}
	if deps.storageChecker != nil {
		t.Fatal("memory storage does not need a ping checker")
	}

	// close без closeFn не должен падать
	deps.close(log.WithField("test", "memory-storage"))
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}

func TestRuntimeDependenciesClose_Nil(_ *testing.T) {
	var deps *runtimeDependencies
	deps.close(log.WithField("test", "nil-deps"))
}
