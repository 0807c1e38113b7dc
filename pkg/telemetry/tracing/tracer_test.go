package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"vadapro/analyzer/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tr, err := New(&config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	ctx, span := tr.Start(context.Background(), "noop")
	span.End()
	assert.NotNil(t, ctx)
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, "test")
	assert.Error(t, err)
}

func TestNilTracer(t *testing.T) {
	var tr *Tracer
	assert.NotPanics(t, func() {
		_, span := tr.Start(context.Background(), "nil")
		span.End()
	})
	assert.False(t, tr.Enabled())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantErr bool
	}{
		{"always", config.TracingConfig{Sampler: SamplerAlways}, false},
		{"never", config.TracingConfig{Sampler: SamplerNever}, false},
		{"ratio", config.TracingConfig{Sampler: SamplerRatio, SampleRatio: 0.5}, false},
		{"empty means ratio", config.TracingConfig{SampleRatio: 0.1}, false},
		{"ratio out of range", config.TracingConfig{Sampler: SamplerRatio, SampleRatio: 1.5}, true},
		{"unknown", config.TracingConfig{Sampler: "sometimes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newSampler(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, s.Description(), "ParentBased")
		})
	}
}

func TestAttributeHelpers(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tr := &Tracer{tracer: provider.Tracer("test"), provider: provider, enabled: true}

	_, span := tr.Start(context.Background(), "analysis.execute")
	SetTokenAttributes(span, 100, 20)
	SetErrorAttributes(span, errors.New("quota"), "QUOTA_EXCEEDED")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.EqualValues(t, 120, attrs[AttrTokensTotal])
	assert.Equal(t, "QUOTA_EXCEEDED", attrs[AttrErrorType])
	assert.Equal(t, "quota", spans[0].Status.Description)
}
