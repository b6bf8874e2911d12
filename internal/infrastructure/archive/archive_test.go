package archive

import "testing"

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix string
		name   string
		want   string
	}{
		{prefix: "", name: "weekly/2026-05-04.html", want: "weekly/2026-05-04.html"},
		{prefix: "reports", name: "/weekly/2026-05-04.html", want: "reports/weekly/2026-05-04.html"},
		{prefix: "reports", name: "  ", want: ""},
	}
	for _, tc := range cases {
		if got := objectKey(tc.prefix, tc.name); got != tc.want {
			t.Fatalf("objectKey(%q, %q) = %q, want %q", tc.prefix, tc.name, got, tc.want)
		}
	}
}

func TestNewMinioArchiveValidatesConfig(t *testing.T) {
	if _, err := NewMinioArchive(Config{Bucket: "reports"}); err == nil {
		t.Fatalf("NewMinioArchive() expected error without endpoint")
	}
	if _, err := NewMinioArchive(Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("NewMinioArchive() expected error without bucket")
	}

	a, err := NewMinioArchive(Config{Endpoint: "localhost:9000", Bucket: "reports", Prefix: "/fleet/"})
	if err != nil {
		t.Fatalf("NewMinioArchive() error = %v", err)
	}
	if a.prefix != "fleet" {
		t.Fatalf("prefix = %q, want fleet", a.prefix)
	}
}
