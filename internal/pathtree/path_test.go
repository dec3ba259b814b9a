package pathtree

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "agents", []string{"agents"}},
		{"nested", "agents.alpha.endpoint", []string{"agents", "alpha", "endpoint"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Split(test.path)
			if len(result) != len(test.expected) {
				t.Fatalf("Split(%q) = %v, expected %v", test.path, result, test.expected)
			}
			for i := range result {
				if result[i] != test.expected[i] {
					t.Errorf("Split(%q)[%d] = %q, expected %q", test.path, i, result[i], test.expected[i])
				}
			}
		})
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		path     string
		expected int
	}{
		{"", 0},
		{"agents", 1},
		{"agents.alpha", 2},
		{"agents.alpha.endpoint", 3},
	}

	for _, test := range tests {
		if result := Depth(test.path); result != test.expected {
			t.Errorf("Depth(%q) = %d, expected %d", test.path, result, test.expected)
		}
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"agents", "agents"},
		{"agents.alpha", "agents"},
		{"agents.alpha.endpoint", "agents.alpha"},
	}

	for _, test := range tests {
		if result := Parent(test.path); result != test.expected {
			t.Errorf("Parent(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		path     string
		n        int
		expected string
	}{
		{"agents.alpha.endpoint", 2, "agents.alpha"},
		{"agents.alpha", 2, "agents.alpha"},
		{"agents", 2, "agents"},
		{"agents.alpha", 0, ""},
	}

	for _, test := range tests {
		if result := Truncate(test.path, test.n); result != test.expected {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", test.path, test.n, result, test.expected)
		}
	}
}

func TestFirst(t *testing.T) {
	if result := First("agents.alpha.endpoint"); result != "agents" {
		t.Errorf("First() = %q, expected %q", result, "agents")
	}
	if result := First("agents"); result != "agents" {
		t.Errorf("First() = %q, expected %q", result, "agents")
	}
}
