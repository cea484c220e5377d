package registry_test

import (
	"errors"
	"strings"
	"testing"

	"meikan/internal/registry"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection reset")
	err := registry.Wrap(registry.ErrNetwork, "search teams", "variant 早稲田", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, registry.ErrNetwork) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"search teams", "variant 早稲田", "connection reset"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutBaseError(t *testing.T) {
	err := registry.Wrap(registry.ErrAuth, "login", "credentials rejected", nil)
	if !errors.Is(err, registry.ErrAuth) {
		t.Fatalf("expected auth marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "credentials rejected") {
		t.Fatalf("expected message in %q", err.Error())
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := registry.Wrap(nil, "", "", nil)
	if !errors.Is(err, registry.ErrNetwork) {
		t.Fatalf("expected nil marker to default to network, got %v", err)
	}
	if !strings.Contains(err.Error(), "registry failure") {
		t.Fatalf("expected generic detail in %q", err.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	wrapped := registry.Wrap(registry.ErrParse, "fetch roster", "member table not found", nil)
	if errors.Is(wrapped, registry.ErrAuth) || errors.Is(wrapped, registry.ErrNetwork) {
		t.Fatalf("parse error matched an unrelated sentinel: %v", wrapped)
	}
}
