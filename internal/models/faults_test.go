package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestFaults(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		f := InvalidParameterValue("DomainName", "a b")
		if f.Code != FaultInvalidParameterValue {
			t.Errorf("unexpected code %q", f.Code)
		}
		if f.Message != "Value (a b) for parameter DomainName is invalid." {
			t.Errorf("unexpected message %q", f.Message)
		}
		if MissingParameter("ItemName").Message != "The request must contain the parameter ItemName." {
			t.Errorf("unexpected message %q", MissingParameter("ItemName").Message)
		}
		if NumberDomainsExceeded().Code != FaultNumberDomainsExceeded {
			t.Errorf("unexpected code")
		}
	})

	t.Run("AsFault unwraps", func(t *testing.T) {
		f := NumberDomainsExceeded()
		wrapped := fmt.Errorf("creating domain: %w", f)
		if got := AsFault(wrapped); got != f {
			t.Errorf("expected the wrapped fault, got %v", got)
		}
		if AsFault(errors.New("disk on fire")) != nil {
			t.Error("plain errors must not be faults")
		}
		if AsFault(nil) != nil {
			t.Error("nil is not a fault")
		}
	})
}
