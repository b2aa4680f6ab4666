package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadAllLimit(t *testing.T) {
	data, err := ReadAllLimit(strings.NewReader("hello"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}

	data, err = ReadAllLimit(strings.NewReader("hello world"), 5)
	if !errors.Is(err, ErrIOLimitReached) {
		t.Fatalf("expected ErrIOLimitReached, got %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want truncation at the limit", data)
	}
}

func TestCopyLimit(t *testing.T) {
	var dst bytes.Buffer
	n, err := CopyLimit(&dst, strings.NewReader("hello"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 || dst.String() != "hello" {
		t.Errorf("copied %d bytes, got %q", n, dst.String())
	}

	dst.Reset()
	_, err = CopyLimit(&dst, strings.NewReader("hello world"), 5)
	if !errors.Is(err, ErrIOLimitReached) {
		t.Fatalf("expected ErrIOLimitReached, got %v", err)
	}
}
