package device

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProbeTableCoversAllKinds(t *testing.T) {
	table := DefaultProbeTable()
	for _, k := range []Kind{KindDecoder, KindEncoder, KindImageProcessor, KindJPEGDecoder} {
		if len(table.Paths[k]) == 0 {
			t.Fatalf("no default paths for kind %s", k)
		}
	}
}

func TestLoadProbeTableOverridesOnlyNamedKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.yaml")
	yamlContent := "decoder:\n  - /dev/video20\n  - /dev/video21\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadProbeTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Paths[KindDecoder]) != 2 || table.Paths[KindDecoder][0] != "/dev/video20" {
		t.Fatalf("decoder override not applied: %+v", table.Paths[KindDecoder])
	}
	if len(table.Paths[KindEncoder]) == 0 {
		t.Fatal("encoder should keep its default when not overridden")
	}
}

func TestLoadProbeTableMissingFileFails(t *testing.T) {
	if _, err := LoadProbeTable("/nonexistent/probe.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestKindStringUnknownValue(t *testing.T) {
	if s := Kind(99).String(); s == "" {
		t.Fatal("expected non-empty fallback string")
	}
}
