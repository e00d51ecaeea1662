package yamlload

import "testing"

const sampleManifests = `
apiVersion: v1
kind: Pod
metadata:
  name: a
---
apiVersion: v1
kind: Service
metadata:
  name: b
`

func TestParseManifestsSplitsDocuments(t *testing.T) {
	objs, err := ParseManifests(sampleManifests, "manifests.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("objects = %d, want 2", len(objs))
	}
	if objs[0].Position.Zero() {
		t.Errorf("expected non-zero position on first document")
	}
}

func TestParseManifestsSkipsEmptyDocuments(t *testing.T) {
	src := "---\napiVersion: v1\nkind: Pod\nmetadata:\n  name: a\n---\n---\n"
	objs, err := ParseManifests(src, "manifests.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("objects = %d, want 1", len(objs))
	}
}

func TestParseManifestsEmptyFile(t *testing.T) {
	_, err := ParseManifests("", "manifests.yaml")
	if err == nil {
		t.Fatalf("expected error for empty file")
	}
}
