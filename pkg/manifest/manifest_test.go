package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

const sampleYAML = `
schema:
  propertyKeys:
    - name: city
      dataType: String
      cardinality: SINGLE
    - name: now
      dataType: String
      cardinality: SINGLE
  vertexLabels:
    - name: location
  edgeLabels:
    - name: route
      multiplicity: SIMPLE
  vertexIndexes:
    - name: cityIndex
      propertyKeys: [city]
      composite: true
      unique: true
indexes:
  - name: " people "
    type: vertex
    composite: true
    indexOnly:
      name: person
    propertyKeys:
      - name: name
        dataType: String
        cardinality: SINGLE
prune: [" legacy ", ""]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	m, err := Load(writeFile(t, "manifest.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if m.Schema == nil || len(m.Schema.PropertyKeys) != 2 {
		t.Fatalf("unexpected schema %+v", m.Schema)
	}
	if m.Schema.EdgeLabels[0].Multiplicity != gds.MultiplicitySimple {
		t.Fatalf("unexpected multiplicity %q", m.Schema.EdgeLabels[0].Multiplicity)
	}
	if len(m.Indexes) != 1 || m.Indexes[0].Name != "people" {
		t.Fatalf("expected trimmed index name, got %+v", m.Indexes)
	}
	if m.Indexes[0].IndexOnly["name"] != "person" {
		t.Fatalf("unexpected indexOnly %+v", m.Indexes[0].IndexOnly)
	}
	if len(m.Prune) != 1 || m.Prune[0] != "legacy" {
		t.Fatalf("unexpected prune list %q", m.Prune)
	}
}

func TestLoadJSON(t *testing.T) {
	content := `{"indexes":[{"name":"byWeight","type":"edge","composite":false,
		"propertyKeys":[{"name":"weight","dataType":"Float","cardinality":"SINGLE"}]}]}`
	m, err := Load(writeFile(t, "manifest.json", content))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if m.Schema != nil {
		t.Fatalf("expected no schema")
	}
	if m.Indexes[0].Type != gds.IndexTypeEdge {
		t.Fatalf("unexpected type %q", m.Indexes[0].Type)
	}
}

func TestLoadRejectsInvalidManifests(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
indexes:
  - {name: a, type: vertex, propertyKeys: [{name: n, dataType: String, cardinality: SINGLE}]}
  - {name: a, type: vertex, propertyKeys: [{name: n, dataType: String, cardinality: SINGLE}]}
`,
		"bad cardinality": `
indexes:
  - {name: a, type: vertex, propertyKeys: [{name: n, dataType: String, cardinality: MANY}]}
`,
		"declared and pruned": `
indexes:
  - {name: a, type: vertex, propertyKeys: [{name: n, dataType: String, cardinality: SINGLE}]}
prune: [a]
`,
		"empty": `indexes: []`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "manifest.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseUnknownExtension(t *testing.T) {
	_, err := Parse([]byte("indexes: []"), ".toml")
	if err == nil || !strings.Contains(err.Error(), "not recognized") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestDigestIsStable(t *testing.T) {
	a := gds.IndexDefinition{Name: "people", Type: gds.IndexTypeVertex, IndexOnly: map[string]string{"b": "2", "a": "1"}}
	b := gds.IndexDefinition{Name: "people", Type: gds.IndexTypeVertex, IndexOnly: map[string]string{"a": "1", "b": "2"}}

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	db, _ := Digest(b)
	if da != db {
		t.Fatalf("expected equal digests, got %s and %s", da, db)
	}

	b.Composite = true
	if dc, _ := Digest(b); dc == da {
		t.Fatalf("expected digest to change with the definition")
	}
	if len(da) != 64 {
		t.Fatalf("unexpected digest length %d", len(da))
	}
}
