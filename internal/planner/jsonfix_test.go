package planner

import "testing"

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here is the plan:\n{\"a\":1}", `{"a":1}`},
		{"trailing prose", "{\"a\":1}\nLet me know if this works.", `{"a":1}`},
		{"trailing comma in object", `{"a":1,}`, `{"a":1}`},
		{"trailing comma in array", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"nested braces in strings", `{"a":"{not json}","b":2}`, `{"a":"{not json}","b":2}`},
		{"fence and comma", "```json\n{\"a\":[1,],}\n```", `{"a":[1]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if err != nil {
				t.Fatalf("ExtractJSON(%q): %v", tc.in, err)
			}
			if string(got) != tc.want {
				t.Fatalf("ExtractJSON(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractJSONFailures(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"a":`, "```\n```"} {
		if _, err := ExtractJSON(in); err == nil {
			t.Fatalf("ExtractJSON(%q) succeeded, want error", in)
		}
	}
}

func TestBalancedObjectSkipsStringBraces(t *testing.T) {
	got, ok := balancedObject(`junk {"a":"}{","b":{"c":1}} tail`)
	if !ok || got != `{"a":"}{","b":{"c":1}}` {
		t.Fatalf("balancedObject = %q ok=%v", got, ok)
	}
}
