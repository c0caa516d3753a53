package kv

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get(k) = %q, %v", got, err)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	m.Set(ctx, "pipe", []byte("x"), time.Second)
	if _, err := m.Get(ctx, "pipe"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, err := m.Get(ctx, "pipe"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry err = %v, want ErrNotFound", err)
	}
}

func TestMemory_Hashes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.HSet(ctx, "glworb:1", map[string]string{"binary_key": "binary:1", "name": "one"})

	v, err := m.HGet(ctx, "glworb:1", "binary_key")
	if err != nil || v != "binary:1" {
		t.Errorf("HGet = %q, %v", v, err)
	}
	if _, err := m.HGet(ctx, "glworb:1", "binary"); !errors.Is(err, ErrNotFound) {
		t.Errorf("HGet(missing field) err = %v", err)
	}
	all, _ := m.HGetAll(ctx, "glworb:2")
	if len(all) != 0 {
		t.Errorf("HGetAll(missing) = %v, want empty", all)
	}
}

func TestMemory_Keys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.HSet(ctx, "glworb:b", map[string]string{"a": "1"})
	m.HSet(ctx, "glworb:a", map[string]string{"a": "1"})
	m.Set(ctx, "binary:a", []byte("x"), 0)

	got, err := m.Keys(ctx, "glworb:*")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"glworb:a", "glworb:b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
