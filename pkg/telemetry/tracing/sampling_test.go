package tracing

import "testing"

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{"always", SamplerAlways, 0, false},
		{"never", SamplerNever, 0, false},
		{"ratio", SamplerRatio, 0.25, false},
		{"empty defaults to ratio", "", 0.5, false},
		{"ratio out of range", SamplerRatio, 1.5, true},
		{"unknown", "sometimes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("expected sampler")
			}
		})
	}
}
