package pkg

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/SAP-F-2025/tarpaulin-service/internal/config"
)

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase("sqlite", "", true)
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB returned error: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		t.Errorf("ping failed: %v", err)
	}

	if _, err := OpenDatabase("oracle", "", true); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisClient returned error: %v", err)
	}
	client.Close()

	if _, err := NewRedisClient(&config.Config{RedisURL: "::not a url"}); err == nil {
		t.Error("expected error for invalid url")
	}
}
