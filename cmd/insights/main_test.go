package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	for _, path := range [][]string{
		{"migrate"},
		{"seed"},
		{"reconcile"},
		{"analyze", "consumer"},
		{"analyze", "all"},
		{"summary"},
		{"churn-risk"},
		{"high-value"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered", path)
		}
	}
}

func TestFlagValidation_BeforeConnecting(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"seed"}, "--file is required"},
		{[]string{"analyze", "consumer"}, "--id must be a positive"},
		{[]string{"analyze", "consumer", "--id", "-3"}, "--id must be a positive"},
	}
	for _, tt := range tests {
		root := newRootCmd(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(tt.args)
		err := root.Execute()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%v: err = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"consumers_updated": 2}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"consumers_updated\": 2\n}\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}
