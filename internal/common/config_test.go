package common

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Extraction.DPI != 300 {
		t.Errorf("dpi = %d", cfg.Extraction.DPI)
	}
	if cfg.Extraction.MinConfidence != 50.0 {
		t.Errorf("min confidence = %v", cfg.Extraction.MinConfidence)
	}
	if cfg.OCR.Tesseract != "tesseract" || cfg.OCR.TesseractLang != "eng" {
		t.Errorf("ocr config = %+v", cfg.OCR)
	}
	if cfg.Queue.Workers != 2 {
		t.Errorf("workers = %d", cfg.Queue.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://localhost/catalogs")
	t.Setenv("EXTRACT_DPI", "450")
	t.Setenv("EXTRACT_MIN_CONFIDENCE", "62.5")
	t.Setenv("QUEUE_JOB_TIMEOUT", "10m")
	t.Setenv("TESSERACT_PSM", "not-a-number") // falls back to default

	cfg := LoadConfig()
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/catalogs" {
		t.Errorf("db config = %+v", cfg.Database)
	}
	if cfg.Extraction.DPI != 450 || cfg.Extraction.MinConfidence != 62.5 {
		t.Errorf("extraction config = %+v", cfg.Extraction)
	}
	if cfg.Queue.JobTimeout != 10*time.Minute {
		t.Errorf("job timeout = %v", cfg.Queue.JobTimeout)
	}
	if cfg.OCR.PSM != 6 {
		t.Errorf("psm = %d, want default on bad value", cfg.OCR.PSM)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad driver err = %v, want ErrInvalidInput", err)
	}

	cfg = LoadConfig()
	cfg.Extraction.DPI = 10
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad dpi err = %v, want ErrInvalidInput", err)
	}
}
