package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/goliatone/go-inventory-cache/catalog"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// CatalogFixture is the shared seed catalog: the "Hardware" category with a
// well stocked and a low stock product, plus an empty "Garden" category.
type CatalogFixture struct {
	Categories []catalog.Category `json:"categories"`
	Products   []catalog.Product  `json:"products"`
}

// Category returns the fixture category named name.
func (f CatalogFixture) Category(t *testing.T, name string) catalog.Category {
	t.Helper()
	for _, c := range f.Categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("fixture has no category %q", name)
	return catalog.Category{}
}

// Product returns the fixture product named name.
func (f CatalogFixture) Product(t *testing.T, name string) catalog.Product {
	t.Helper()
	for _, p := range f.Products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("fixture has no product %q", name)
	return catalog.Product{}
}

// LoadCatalogFixture reads testdata/catalog.json from this package, so it
// works from any test package.
func LoadCatalogFixture(t *testing.T) CatalogFixture {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate testsupport package")
	}

	var fixture CatalogFixture
	LoadFixtureJSON(t, filepath.Join(filepath.Dir(file), FixturePath("catalog.json")), &fixture)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range fixture.Categories {
		fixture.Categories[i].CreatedAt = created
	}
	for i := range fixture.Products {
		fixture.Products[i].CreatedAt = created
		fixture.Products[i].UpdatedAt = created
	}
	return fixture
}

// Seed writes the fixture through the repository ports.
func (f CatalogFixture) Seed(t *testing.T, categories catalog.CategoryRepository, products catalog.ProductRepository) {
	t.Helper()
	ctx := context.Background()

	for _, c := range f.Categories {
		if err := categories.Add(ctx, &c); err != nil {
			t.Fatalf("failed to seed category %s: %v", c.Name, err)
		}
	}
	for _, p := range f.Products {
		if err := products.Add(ctx, &p); err != nil {
			t.Fatalf("failed to seed product %s: %v", p.Name, err)
		}
	}
}
