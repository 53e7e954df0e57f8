package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/yaron8/netperf-analyzer/analyzer/config"
	"github.com/yaron8/netperf-analyzer/analyzer/dao"
	"github.com/yaron8/netperf-analyzer/logi"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

func TestMain(m *testing.M) {
	if _, err := logi.NewLog(&logi.Config{Writer: io.Discard}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type APIServerTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	dao    *dao.DAOSummaries
	server *httptest.Server
}

func TestAPIServerSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}

func (s *APIServerTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.dao = dao.NewDAOSummaries(s.client, 0)
	s.server = httptest.NewServer(NewAPIServer(config.NewConfig(), s.dao).Handler())
}

func (s *APIServerTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
}

func (s *APIServerTestSuite) seed(runID string, summaries ...telemetrics.Summary) {
	ctx := context.Background()
	for _, summary := range summaries {
		s.Require().NoError(s.dao.Store(ctx, runID, summary))
	}
	s.Require().NoError(s.dao.SetLastRun(ctx, runID))
}

func (s *APIServerTestSuite) get(path string) (*http.Response, []byte) {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *APIServerTestSuite) TestHealthEndpoint() {
	resp, body := s.get("/health")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", string(body))
}

func (s *APIServerTestSuite) TestListSummaries_DefaultsToLastRun() {
	s.seed("run1", telemetrics.Summary{Interface: "eth0", Metric: "rx_packets", Count: 3})
	s.seed("run2",
		telemetrics.Summary{Interface: "eth0", Metric: "tx_packets", Count: 4},
		telemetrics.Summary{Interface: "eth0", Metric: "rx_packets", Count: 5})

	resp, body := s.get("/telemetry/ListSummaries")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/json", resp.Header.Get("Content-Type"))

	var got listSummariesResponse
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal("run2", got.Run)
	s.Require().Len(got.Summaries, 2)
	s.Equal("rx_packets", got.Summaries[0].Metric)
	s.Equal(5, got.Summaries[0].Count)

	resp, body = s.get("/telemetry/ListSummaries?run=run1")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal("run1", got.Run)
	s.Len(got.Summaries, 1)
}

func (s *APIServerTestSuite) TestListSummaries_NoRuns() {
	resp, _ := s.get("/telemetry/ListSummaries")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APIServerTestSuite) TestGetSummary() {
	s.seed("run1", telemetrics.Summary{Interface: "eth0", Metric: "rx_bytes", Count: 9, Mean: 1500.5})

	resp, body := s.get("/telemetry/GetSummary?interface=eth0&metric=rx_bytes")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got telemetrics.Summary
	s.Require().NoError(json.Unmarshal(body, &got))
	s.Equal(9, got.Count)
	s.Equal(1500.5, got.Mean)
}

func (s *APIServerTestSuite) TestGetSummary_BadRequests() {
	s.seed("run1", telemetrics.Summary{Interface: "eth0", Metric: "rx_bytes"})

	resp, _ := s.get("/telemetry/GetSummary?metric=rx_bytes")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.get("/telemetry/GetSummary?interface=eth0")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.get("/telemetry/GetSummary?interface=eth0&metric=tx_bytes")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.get("/telemetry/GetSummary?run=other&interface=eth0&metric=rx_bytes")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APIServerTestSuite) TestStoreUnavailable() {
	s.mr.Close()

	resp, _ := s.get("/telemetry/ListSummaries?run=run1")
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
}

func (s *APIServerTestSuite) TestShutdownBeforeStart() {
	api := NewAPIServer(config.NewConfig(), s.dao)
	s.Require().NoError(api.Shutdown(context.Background()))
	s.NoError(api.Start())
}
