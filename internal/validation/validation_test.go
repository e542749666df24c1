package validation

import "testing"

func TestValidateRequired(t *testing.T) {
	if err := ValidateRequired("name", "Physical Fitness"); err != nil {
		t.Errorf("expected no error for non-empty value, got %v", err)
	}
	if err := ValidateRequired("name", "   "); err == nil {
		t.Error("expected error for whitespace-only value")
	}
	if err := ValidateRequired("name", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("title", "short", 10); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateMaxLength("title", "exactly ten", 10); err == nil {
		t.Error("expected error for value over max")
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b@sub.domain.org"}
	for _, v := range valid {
		if err := ValidateEmail("email", v); err != nil {
			t.Errorf("expected %q to be valid, got %v", v, err)
		}
	}
	invalid := []string{"", "plain", "@example.com", "user@", "user@nodot"}
	for _, v := range invalid {
		if err := ValidateEmail("email", v); err == nil {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"pending", "completed", "skipped"}
	if err := ValidateEnum("status", "completed", allowed); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateEnum("status", "done", allowed); err == nil {
		t.Error("expected error for value outside enum")
	}
}

func TestValidateIntRange(t *testing.T) {
	if err := ValidateIntRange("mood", 5, 1, 10); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateIntRange("mood", 0, 1, 10); err == nil {
		t.Error("expected error below range")
	}
	if err := ValidateIntRange("mood", 11, 1, 10); err == nil {
		t.Error("expected error above range")
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("entry_date", "2025-06-15"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	for _, bad := range []string{"2025/06/15", "15-06-2025", "2025-6-15", "not-a-date1"} {
		if err := ValidateDate("entry_date", bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() {
		t.Error("new collector should have no errors")
	}
	c.Add(nil)
	if c.HasErrors() {
		t.Error("adding nil should not register an error")
	}
	c.Add(ValidateRequired("name", ""))
	c.Add(ValidateIntRange("mood", 20, 1, 10))
	if !c.HasErrors() {
		t.Fatal("expected errors")
	}
	if got := len(c.Errors()); got != 2 {
		t.Errorf("expected 2 errors, got %d", got)
	}
}
