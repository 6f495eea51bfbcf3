package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"subito_scrooper/models"
)

func writeSite(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write site file: %v", err)
	}
	return path
}

func TestLoadSite_MissingFileUsesDefaults(t *testing.T) {
	site, err := LoadSite(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if site.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base URL, got %s", site.BaseURL)
	}
	if site.Pages != DefaultPages {
		t.Fatalf("expected %d pages, got %d", DefaultPages, site.Pages)
	}
	if site.Table != models.RealEstateTable {
		t.Fatalf("expected table %s, got %s", models.RealEstateTable, site.Table)
	}
	if len(site.Schema) != len(models.RealEstateSchema) {
		t.Fatalf("expected default schema, got %d columns", len(site.Schema))
	}
}

func TestLoadSite_OverridesFromYAML(t *testing.T) {
	path := writeSite(t, `
id: cagliari
base_url: https://www.subito.it/annunci-sardegna/vendita/appartamenti/cagliari/?bc=30
pages: 2
table: listings
create_table: true
schema:
  - name: content
    type: TEXT
  - name: price
    type: INTEGER
`)

	site, err := LoadSite(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if site.ID != "cagliari" {
		t.Fatalf("expected id cagliari, got %s", site.ID)
	}
	if site.Name != "Subito.it" {
		t.Fatalf("expected default name, got %s", site.Name)
	}
	if site.Table != "listings" || !site.CreateTable {
		t.Fatalf("unexpected table settings %s %v", site.Table, site.CreateTable)
	}
	if len(site.Schema) != 2 || site.Schema[1].Name != "price" || site.Schema[1].Type != "INTEGER" {
		t.Fatalf("unexpected schema %+v", site.Schema)
	}
}

func TestLoadSite_OmittedKeysKeepDefaults(t *testing.T) {
	path := writeSite(t, "id: subito\npages: 2\n")

	site, err := LoadSite(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if site.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", site.Pages)
	}
	if !site.CreateTable {
		t.Fatalf("expected create_table to default to true")
	}
	if site.BaseURL != DefaultBaseURL || site.Table != models.RealEstateTable {
		t.Fatalf("unexpected defaults %s %s", site.BaseURL, site.Table)
	}
	if len(site.Schema) != len(models.RealEstateSchema) {
		t.Fatalf("expected default schema, got %d columns", len(site.Schema))
	}
}

func TestLoadSite_CreateTableCanBeDisabled(t *testing.T) {
	path := writeSite(t, "create_table: false\nuser_agent: test-agent\n")

	site, err := LoadSite(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if site.CreateTable {
		t.Fatalf("expected create_table false")
	}
	if site.UserAgent != "test-agent" {
		t.Fatalf("expected user agent test-agent, got %q", site.UserAgent)
	}
}

func TestLoadSite_InvalidYAML(t *testing.T) {
	path := writeSite(t, "pages: [not, a, number")
	if _, err := LoadSite(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSiteConfig_URLs(t *testing.T) {
	site := &SiteConfig{BaseURL: "https://example.com/nuove-costruzioni/", Pages: 3}

	urls := site.URLs()
	if len(urls) != 3 {
		t.Fatalf("expected 3 urls, got %d", len(urls))
	}
	if urls[0] != "https://example.com/nuove-costruzioni/?o=0" {
		t.Fatalf("unexpected first url %s", urls[0])
	}
	if urls[2] != "https://example.com/nuove-costruzioni/?o=2" {
		t.Fatalf("unexpected last url %s", urls[2])
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SITE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("SCRAPE_TIMEOUT", "5s")
	t.Setenv("SCRAPE_RETRIES", "7")
	t.Setenv("GENERATOR_SERVICE", "mistral")
	t.Setenv("GENERATION_KWARGS", `{"temperature": 0.1, "num_predict": 256}`)
	t.Setenv("SQL_MAX_REVISIONS", "2")
	t.Setenv("SCRAPE_INTERVAL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DBPath != "test.db" {
		t.Fatalf("expected test.db, got %s", cfg.DBPath)
	}
	if cfg.Scraper.Timeout != 5*time.Second || cfg.Scraper.Retries != 7 {
		t.Fatalf("unexpected scraper config %+v", cfg.Scraper)
	}
	if cfg.Generator.Service != "mistral" {
		t.Fatalf("expected mistral, got %s", cfg.Generator.Service)
	}
	if cfg.Generator.Timeout != 60*time.Second {
		t.Fatalf("expected default generator timeout, got %v", cfg.Generator.Timeout)
	}
	if cfg.Generator.Kwargs["temperature"] != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", cfg.Generator.Kwargs["temperature"])
	}
	if cfg.Search.MaxRevisions != 2 {
		t.Fatalf("expected 2 revisions, got %d", cfg.Search.MaxRevisions)
	}
	if cfg.Scheduler.Interval != time.Hour {
		t.Fatalf("expected 1h interval, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Site == nil || cfg.Site.Pages != DefaultPages {
		t.Fatalf("expected default site, got %+v", cfg.Site)
	}
}

func TestLoad_BadKwargs(t *testing.T) {
	t.Setenv("SITE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GENERATION_KWARGS", "{temperature: 0.1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed GENERATION_KWARGS")
	}
}
