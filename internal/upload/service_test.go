package upload

import (
	"errors"
	"testing"
)

func validConfig() ServiceConfig {
	return ServiceConfig{
		BucketName:      "fixtures",
		AccessKeyID:     "AKIAEXAMPLEKEY00",
		SecretAccessKey: "supersecretvalue",
		Endpoint:        "https://s3.example.com",
	}
}

func TestNewService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServiceConfig)
		wantErr error
	}{
		{"missing bucket", func(c *ServiceConfig) { c.BucketName = "" }, ErrMissingBucket},
		{"missing access key", func(c *ServiceConfig) { c.AccessKeyID = "" }, ErrMissingAccessKey},
		{"missing secret key", func(c *ServiceConfig) { c.SecretAccessKey = "" }, ErrMissingSecretKey},
		{"missing endpoint", func(c *ServiceConfig) { c.Endpoint = "" }, ErrMissingEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := NewService(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewService() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewService_Valid(t *testing.T) {
	svc, err := NewService(validConfig())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if svc == nil {
		t.Fatal("NewService() returned nil service")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		runID   string
		path    string
		want    string
		wantErr error
	}{
		{
			name:  "csv without prefix",
			runID: "run-1",
			path:  "/out/data/metadata.csv",
			want:  "run-1/metadata.csv",
		},
		{
			name:   "json with prefix",
			prefix: "fixtures",
			runID:  "run-2",
			path:   "data/manifest.json",
			want:   "fixtures/run-2/manifest.json",
		},
		{
			name:   "prefix slashes trimmed",
			prefix: "/fixtures/",
			runID:  "run-3",
			path:   "access_logs.csv",
			want:   "fixtures/run-3/access_logs.csv",
		},
		{
			name:    "unsupported extension",
			runID:   "run-4",
			path:    "notes.txt",
			wantErr: ErrUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.KeyPrefix = tt.prefix
			svc, err := NewService(cfg)
			if err != nil {
				t.Fatalf("NewService() error = %v", err)
			}

			key, err := svc.ObjectKey(tt.runID, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ObjectKey() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ObjectKey() error = %v", err)
			}
			if key != tt.want {
				t.Errorf("ObjectKey() = %q, want %q", key, tt.want)
			}
		})
	}
}
