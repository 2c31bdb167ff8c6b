package store

import (
	"errors"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s == nil {
		t.Fatal("expected a store")
	}
}

func TestOpenFile(t *testing.T) {
	s, err := Open(Config{Driver: DriverFile})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s == nil {
		t.Fatal("expected a store")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "etcd"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("err = %v, want ErrUnknownDriver", err)
	}
}

func TestOpenDatabaseDriversRequireDB(t *testing.T) {
	for _, driver := range []Driver{DriverPostgres, DriverSQLite, DriverMongo} {
		if _, err := Open(Config{Driver: driver}); err == nil {
			t.Fatalf("%s: expected error without DB", driver)
		}
	}
}

func TestOpenRedisRequiresOptions(t *testing.T) {
	if _, err := Open(Config{Driver: DriverRedis}); err == nil {
		t.Fatal("expected error without redis options")
	}
}
