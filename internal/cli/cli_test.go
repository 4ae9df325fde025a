package cli_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/phishguard/phishguard/internal/cli"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	args, err := cli.ParseArgs([]string{"-url", "http://example.test/", "-offline", "-pretty"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.URL != "http://example.test/" {
		t.Errorf("url = %q", args.URL)
	}
	if !args.Offline || !args.Pretty {
		t.Errorf("flags not set: %+v", args)
	}
}

func TestParseArgsRequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := cli.ParseArgs(nil); err == nil {
		t.Fatal("expected error with no target")
	}
	if _, err := cli.ParseArgs([]string{"-url", "a", "-file", "b"}); err == nil {
		t.Fatal("expected error with both -url and -file")
	}
}

func TestReadURLFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "http://a.test/\n\n# comment\nhttp://b.test/\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	urls, err := cli.ReadURLFile(path)
	if err != nil {
		t.Fatalf("ReadURLFile: %v", err)
	}
	want := []string{"http://a.test/", "http://b.test/"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v, want %v", urls, want)
	}
}
