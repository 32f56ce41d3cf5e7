package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw      string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{"/connect", "/connect", []string{}, false},
		{"/send hello there", "/send", []string{"hello", "there"}, false},
		{"  /status  \n", "/status", []string{}, false},
		{"/report   abc   ", "/report", []string{"abc"}, false},
		{"bogus request", "bogus", []string{"request"}, false},
		{"", "", nil, true},
		{"   \t\n", "", nil, true},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("Parse(%q) error = %v, want ErrEmpty", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tc.raw, err)
			continue
		}
		if cmd.Name != tc.wantName {
			t.Errorf("Parse(%q).Name = %q, want %q", tc.raw, cmd.Name, tc.wantName)
		}
		if len(cmd.Args) != len(tc.wantArgs) || (len(cmd.Args) > 0 && !reflect.DeepEqual(cmd.Args, tc.wantArgs)) {
			t.Errorf("Parse(%q).Args = %v, want %v", tc.raw, cmd.Args, tc.wantArgs)
		}
	}
}

func TestCommandText(t *testing.T) {
	cmd, err := Parse("/send one  two   three")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := cmd.Text(); got != "one two three" {
		t.Errorf("Text() = %q, want %q", got, "one two three")
	}
}
