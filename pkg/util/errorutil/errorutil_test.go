package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	plain := errors.New("boom")
	wrapped := fmt.Errorf("create channel: %w", NewExternalFailure("Could not create the ticket channel.", plain))

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: plain, wantCode: CodeInternal, wantMsg: "Something went wrong."},
		{name: "wrapped domain error", err: wrapped, wantCode: CodeExternalFailure, wantMsg: "Could not create the ticket channel."},
		{name: "forbidden", err: NewForbidden("Only staff can claim tickets."), wantCode: CodeForbidden, wantMsg: "Only staff can claim tickets."},
		{name: "missing role", err: NewMissingRole("Lite"), wantCode: CodeMissingRole, wantMsg: "You need the **Lite** role to use this command."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("ToDomainError(nil) = %v, want nil", got)
				}
				return
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestDomainErrorUnwrapAndFault(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewExternalFailure("Could not fetch the attachment.", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should reach the wrapped cause")
	}
	if !ToDomainError(err).IsFault() {
		t.Error("external failure should be a fault")
	}
	if ToDomainError(NewForbidden("no")).IsFault() {
		t.Error("authorization errors are not faults")
	}
	if got := ToDomainError(NewMissingConfig("x", "KEY")).HTTPStatus; got != http.StatusServiceUnavailable {
		t.Errorf("missing config status = %d", got)
	}
	if !HasCode(fmt.Errorf("ctx: %w", NewConflict("dup", nil)), CodeConflict) {
		t.Error("HasCode should see through wrapping")
	}
}
