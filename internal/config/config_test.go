package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("TOTIROOM_URL", "")
	t.Setenv("SITE_ID", "")
	t.Setenv("NOTIFY_TO", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), "0.0.0.0:8080")
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true by default")
	}
	if cfg.SiteID != "stevetoti" {
		t.Errorf("SiteID = %q, want %q", cfg.SiteID, "stevetoti")
	}
	if cfg.NotifyTo != nil {
		t.Errorf("NotifyTo = %v, want nil", cfg.NotifyTo)
	}
}

func TestRestAndFunctionsURLs(t *testing.T) {
	t.Setenv("TOTIROOM_URL", "https://example.supabase.co/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.RestURL(); got != "https://example.supabase.co/rest/v1" {
		t.Errorf("RestURL() = %q", got)
	}
	if got := cfg.FunctionsURL(); got != "https://example.supabase.co/functions/v1" {
		t.Errorf("FunctionsURL() = %q", got)
	}
}

func TestRestKey_PrefersServiceRole(t *testing.T) {
	tests := []struct {
		name    string
		service string
		anon    string
		want    string
	}{
		{"service role preferred", "svc-key", "anon-key", "svc-key"},
		{"anon fallback", "", "anon-key", "anon-key"},
		{"neither configured", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SUPABASE_TOTIROOM_SERVICE_KEY", tt.service)
			t.Setenv("SUPABASE_TOTIROOM_ANON_KEY", tt.anon)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.RestKey(); got != tt.want {
				t.Errorf("RestKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Setenv("NOTIFY_TO", " steve@pacificwavedigital.com, toti@pacificwavedigital.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"steve@pacificwavedigital.com", "toti@pacificwavedigital.com"}
	if len(cfg.NotifyTo) != len(want) {
		t.Fatalf("NotifyTo = %v, want %v", cfg.NotifyTo, want)
	}
	for i := range want {
		if cfg.NotifyTo[i] != want[i] {
			t.Errorf("NotifyTo[%d] = %q, want %q", i, cfg.NotifyTo[i], want[i])
		}
	}
}
