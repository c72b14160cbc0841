package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTraceLayer_RecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	layer := NewTraceLayer(tp.Tracer("test"))

	_, span := layer.TraceRepositoryMethod(context.Background(), "ToggleFavorite", "user_favorites")
	EndSpan(span, errors.New("boom"))

	_, ok := layer.TraceServiceCall(context.Background(), "RecipeService", "CreateRecipe")
	EndSpan(ok, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "repository.ToggleFavorite", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "RecipeService.CreateRecipe", ended[1].Name())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "recipebox-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTrackQuery_ObservesLatency(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)
	TrackQuery("select", "observability_test")()
	assert.Equal(t, before+1, testutil.CollectAndCount(DatabaseQueryLatency))
}

func TestRepoLogger_UsesInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := GlobalLogger()
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(prev)

	l := NewRepoLogger("recipes")
	l.LogCreate(context.Background(), map[string]interface{}{"id": "r1"})
	l.LogError(context.Background(), errors.New("db down"), "create")

	out := buf.String()
	assert.Contains(t, out, "table=recipes")
	assert.Contains(t, out, "id=r1")
	assert.Contains(t, out, "error=\"db down\"")
}

func TestTraceServiceCall_CarriesRecordAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	layer := NewTraceLayer(tp.Tracer("test"))

	_, span := layer.TraceServiceCall(context.Background(), "FavoriteService", "ToggleFavorite", UserAttr("u1"), RecipeAttr("r1"))
	EndSpan(span, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "u1", attrs["recipebox.user_id"])
	assert.Equal(t, "r1", attrs["recipebox.recipe_id"])
	assert.Equal(t, "ToggleFavorite", attrs["service.method"])
}

func TestNewExporter_RejectsUnknown(t *testing.T) {
	_, err := newExporter(TracingConfig{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "unknown tracing exporter")

	exp, err := newExporter(TracingConfig{Exporter: "stdout"})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", newSampler(1).Description())
	assert.Contains(t, newSampler(0.25).Description(), "ParentBased")
}
