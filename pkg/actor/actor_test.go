package actor

import (
	"context"
	"testing"

	"github.com/autocomply/casework/pkg/domain"
)

func TestParseRole(t *testing.T) {
	valid := []string{"submitter", "verifier", "admin", "devsupport"}
	for _, v := range valid {
		if _, err := ParseRole(v); err != nil {
			t.Errorf("ParseRole(%q) returned error: %v", v, err)
		}
	}

	if _, err := ParseRole("superadmin"); err == nil {
		t.Error("ParseRole(\"superadmin\") expected error, got nil")
	} else if !domain.Is(err, domain.KindBadRequest) {
		t.Errorf("ParseRole error kind = %v, want bad_request", err)
	}
}

func TestCanRedactFull(t *testing.T) {
	cases := []struct {
		role domain.ActorRole
		want bool
	}{
		{domain.RoleSubmitter, false},
		{domain.RoleVerifier, false},
		{domain.RoleAdmin, true},
		{domain.RoleDevsupport, true},
	}
	for _, c := range cases {
		a := Actor{Role: c.role}
		if got := a.CanRedactFull(); got != c.want {
			t.Errorf("Actor{Role: %v}.CanRedactFull() = %v, want %v", c.role, got, c.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	a := Actor{Role: domain.RoleVerifier, ID: "v-1"}
	ctx := WithActor(context.Background(), a)

	if got := FromContext(ctx); got != a {
		t.Errorf("FromContext = %v, want %v", got, a)
	}
}

func TestContextDefaultsToSystem(t *testing.T) {
	if got := FromContext(context.Background()); got != System {
		t.Errorf("FromContext(empty) = %v, want %v", got, System)
	}
}
