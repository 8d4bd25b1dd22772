package provider_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/diarkit/logger"
	"github.com/kbukum/diarkit/observability"
	"github.com/kbukum/diarkit/provider"
)

type echoProvider struct {
	name string
	err  error
}

func (p *echoProvider) Name() string                       { return p.name }
func (p *echoProvider) IsAvailable(_ context.Context) bool { return true }

func (p *echoProvider) Execute(_ context.Context, in string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "echo:" + in, nil
}

var _ provider.RequestResponse[string, string] = (*echoProvider)(nil)

type recordingSink struct {
	got []string
	err error
}

func (s *recordingSink) Name() string                       { return "recorder" }
func (s *recordingSink) IsAvailable(_ context.Context) bool { return true }
func (s *recordingSink) Send(_ context.Context, in string) error {
	s.got = append(s.got, in)
	return s.err
}

type orderTracker struct {
	inner provider.RequestResponse[string, string]
	tag   string
	order *[]string
}

func (o *orderTracker) Name() string                         { return o.inner.Name() }
func (o *orderTracker) IsAvailable(ctx context.Context) bool { return o.inner.IsAvailable(ctx) }
func (o *orderTracker) Execute(ctx context.Context, input string) (string, error) {
	*o.order = append(*o.order, o.tag+":before")
	out, err := o.inner.Execute(ctx, input)
	*o.order = append(*o.order, o.tag+":after")
	return out, err
}

func jsonLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(&logger.Config{Level: "debug", Format: logger.FormatJSON, Writer: buf}, "test")
}

func TestChainEmpty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(&echoProvider{name: "test"})
	if wrapped.Name() != "test" {
		t.Fatalf("expected 'test', got %q", wrapped.Name())
	}
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return &orderTracker{inner: inner, tag: tag, order: &order}
		}
	}

	wrapped := provider.Chain(mw("A"), mw("B"), mw("C"))(&echoProvider{name: "test"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := "A:before B:before C:before C:after B:after A:after"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWithLoggingSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf)

	ok := provider.WithLogging[string, string](log)(&echoProvider{name: "stub"})
	if _, err := ok.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"provider execute ok"`) || !strings.Contains(buf.String(), `"provider":"stub"`) {
		t.Errorf("expected debug line for success, got %s", buf.String())
	}

	buf.Reset()
	failing := provider.WithLogging[string, string](log)(&echoProvider{name: "stub", err: errors.New("boom")})
	if _, err := failing.Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error to propagate")
	}
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error line, got %s", buf.String())
	}
}

func TestWithSinkLogging(t *testing.T) {
	var buf bytes.Buffer
	inner := &recordingSink{err: errors.New("refused")}
	sink := provider.WithSinkLogging[string](jsonLogger(&buf))(inner)

	if sink.Name() != "recorder" {
		t.Errorf("expected inner name, got %q", sink.Name())
	}
	if err := sink.Send(context.Background(), "payload"); err == nil {
		t.Fatal("expected error to propagate")
	}
	if len(inner.got) != 1 || inner.got[0] != "payload" {
		t.Errorf("expected inner sink to receive payload, got %v", inner.got)
	}
	if !strings.Contains(buf.String(), "provider send failed") {
		t.Errorf("expected send failure log, got %s", buf.String())
	}
}

func TestWithMetrics(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	wrapped := provider.WithMetrics[string, string]("diarize", metrics)(&echoProvider{name: "stub", err: errors.New("x")})
	if _, err := wrapped.Execute(context.Background(), "in"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestWithMetricsNilIsPassthrough(t *testing.T) {
	inner := &echoProvider{name: "stub"}
	wrapped := provider.WithMetrics[string, string]("diarize", nil)(inner)
	if wrapped != provider.RequestResponse[string, string](inner) {
		t.Error("expected nil metrics to return the inner provider unchanged")
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	wrapped := provider.WithTracing[string, string]("diarize", "capability.diarize")(&echoProvider{name: "stub"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "capability.diarize" {
		t.Fatalf("expected one capability.diarize span, got %+v", spans)
	}
}
