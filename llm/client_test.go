package llm

import "testing"

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n[1, 2]\n```  ", "[1, 2]"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	if (&Client{key: ""}).Enabled() {
		t.Error("empty key should disable the client")
	}
	if (&Client{key: "   "}).Enabled() {
		t.Error("blank key should disable the client")
	}
	if !(&Client{key: "sk-test"}).Enabled() {
		t.Error("set key should enable the client")
	}
}
