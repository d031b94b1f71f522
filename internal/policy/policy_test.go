package policy

import (
	"testing"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
)

func TestEmptyAllowlistPermitsEverything(t *testing.T) {
	if err := CheckCommandAllowed(nil, "routes compare"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAllowlistedCommand(t *testing.T) {
	allow := []string{"routes compare", "risk assess"}
	if err := CheckCommandAllowed(allow, "risk assess"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAllowlistNormalizesSpacingAndCase(t *testing.T) {
	allow := []string{"  Routes   Compare "}
	if err := CheckCommandAllowed(allow, "routes compare"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBlockedCommand(t *testing.T) {
	allow := []string{"routes compare"}
	err := CheckCommandAllowed(allow, "risk assess")
	cErr, ok := clierr.As(err)
	if !ok || cErr.Code != clierr.CodeBlocked {
		t.Fatalf("error = %v, want blocked", err)
	}
}
