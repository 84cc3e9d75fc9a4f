package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_EndSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, ok := StartSpan(context.Background(), "shipping.list_rates", attribute.String("shipment.id", "SHIP_1"))
	EndSpan(ok, nil)

	_, failed := StartSpan(context.Background(), "shipping.purchase_label")
	EndSpan(failed, errors.New("provider timeout"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "shipping.list_rates", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("shipment.id", "SHIP_1"))

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "provider timeout", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1, "error is recorded as an event")
}
