package typegraph_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-client-go/log"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/federation"
	tracing "github.com/graph-gophers/typegraph/trace/opentracing"
)

func TestOpenTracingSpans(t *testing.T) {
	mt := mocktracer.New()
	opentracing.SetGlobalTracer(mt)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	s := petSchema(t, typegraph.Tracer(tracing.Tracer{}))
	s.Federation().MustKey("Pet", "name")
	require.NoError(t, s.Federation().ResolveReference("Pet", federation.Typed(func(ctx context.Context, key struct{ Name string }) (*pet, error) {
		return &pet{Name: key.Name}, nil
	})))
	require.NoError(t, s.EnableFederation(""))
	require.NoError(t, s.Build())

	_, qErr := s.ResolveField(context.Background(), "Query", "pet", nil, map[string]interface{}{"name": "Rex"})
	require.Nil(t, qErr)
	_, qErr = s.ResolveField(context.Background(), "Pet", "legs", &pet{}, nil)
	require.Nil(t, qErr)

	results := s.ResolveEntities(context.Background(), []federation.Representation{
		{Typename: "Pet", Fields: map[string]interface{}{"name": "Rex"}},
	})
	require.Len(t, results, 1)
	require.Nil(t, results[0].Err)

	var names []string
	for _, span := range mt.FinishedSpans() {
		names = append(names, span.OperationName)
	}
	// trivial fields are not traced
	assert.ElementsMatch(t, []string{"Query.pet", "GraphQL entity: Pet", "GraphQL entities"}, names)
}

func TestJaegerTracing(t *testing.T) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		t.Skipf("skipping test; Could not initialize jaeger: %s", err)
		return
	}
	queryAPI := os.Getenv("JAEGER_QUERY_ENDPOINT")
	if queryAPI == "" {
		t.Skipf("skipping test; JAEGER_QUERY_ENDPOINT env not defined.")
		return
	}

	svcName := t.Name() + "-" + ksuid.New().String()
	queryURL := fmt.Sprintf(
		"%s?lookback=1h&limit=1&service=%s",
		queryAPI,
		svcName,
	)

	cfg.ServiceName = svcName
	cfg.Sampler.Type = jaeger.SamplerTypeConst
	cfg.Sampler.Param = 1
	cfg.Reporter.LogSpans = true

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(log.StdLogger))
	if err != nil {
		t.Skipf("skipping test; Could not initialize jaeger: %s", err)
		return
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	s := petSchema(t, typegraph.Tracer(tracing.Tracer{}))
	require.NoError(t, s.Build())

	// No traces should be in the system yet..
	assertTraceCount(t, queryURL, 0)

	v, qErr := s.ResolveField(context.Background(), "Query", "pet", nil, map[string]interface{}{"name": "Rex"})
	require.Nil(t, qErr)
	assert.Equal(t, &pet{Name: "Rex", Legs: 4}, v)

	time.Sleep(1 * time.Second)
	assertTraceCount(t, queryURL, 1)
}

func assertTraceCount(t *testing.T, queryURL string, count int) {
	data := map[string]interface{}{}
	httpGetJSON(t, queryURL, &data)
	datas, _ := data["data"].([]interface{})
	assert.Equal(t, count, len(datas))
}

func httpGetJSON(t *testing.T, url string, target interface{}) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}
