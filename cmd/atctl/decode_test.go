package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) failed: %v", args, err)
	}
	return out.String()
}

func TestCatalogListsAllEntries(t *testing.T) {
	out := runCmd(t, "catalog")
	for _, e := range catalog {
		if !strings.Contains(out, e.name) {
			t.Fatalf("catalog output missing entry %q:\n%s", e.name, out)
		}
	}
}

func TestDecodeURC(t *testing.T) {
	out := runCmd(t, "decode", "urc", "+CSQ: 25,99")
	if !strings.Contains(out, "RSSI:25") {
		t.Fatalf("got %q, want RSSI:25 in output", out)
	}
}

func TestDecodeCMGS(t *testing.T) {
	out := runCmd(t, "decode", "cmgs", "+CMGS: 7")
	if !strings.Contains(out, "Reference:7") {
		t.Fatalf("got %q, want Reference:7 in output", out)
	}
}

func TestDecodeUnknownKindErrors(t *testing.T) {
	rootCmd.SetArgs([]string{"decode", "bogus", "x"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown decode kind")
	}
}
