package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	b := NewRedis(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	defer b.Close()

	checkRoundTrip(t, b)
}

func TestRedisLoadCorrupt(t *testing.T) {
	s := miniredis.RunT(t)
	if err := s.Set("workouts", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b := NewRedis(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	defer b.Close()

	if _, err := b.Load(context.Background(), "workouts"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisSaveError(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	s.Close()
	b := NewRedis(client)
	defer b.Close()

	if err := b.Save(context.Background(), "workouts", sampleSnapshots(t)); err == nil {
		t.Fatalf("expected save error")
	}
	if _, err := b.Load(context.Background(), "workouts"); err == nil {
		t.Fatalf("expected load error")
	}
}
