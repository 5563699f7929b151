package model

import "testing"

func TestPriorityIsValid(t *testing.T) {
	tests := []struct {
		priority Priority
		valid    bool
	}{
		{PriorityBefore, true},
		{PriorityAfter, true},
		{PriorityAfterReboot, true},
		{Priority("invalid"), false},
		{Priority(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.IsValid(); got != tt.valid {
				t.Errorf("Priority(%q).IsValid() = %v, want %v", tt.priority, got, tt.valid)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    Priority
		wantErr bool
	}{
		"empty defaults to AFTER":   {input: "", want: PriorityAfter},
		"exact match":               {input: "BEFORE", want: PriorityBefore},
		"lowercase":                 {input: "after", want: PriorityAfter},
		"space separator":           {input: "AFTER REBOOT", want: PriorityAfterReboot},
		"dash separator":            {input: "after-reboot", want: PriorityAfterReboot},
		"surrounding whitespace":    {input: "  BEFORE  ", want: PriorityBefore},
		"unknown priority rejected": {input: "DURING", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePriority(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePriority(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAllPriorities(t *testing.T) {
	priorities := AllPriorities()

	if len(priorities) != 3 {
		t.Errorf("Expected 3 priorities, got %d", len(priorities))
	}

	for _, p := range priorities {
		if !p.IsValid() {
			t.Errorf("AllPriorities() returned invalid priority: %s", p)
		}
		if p.Description() == "Unknown priority" {
			t.Errorf("Priority %s has no description", p)
		}
	}
}
