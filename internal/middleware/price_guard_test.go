package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"CoinPulse/mocks"
)

type PriceGuardTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	next    *mocks.MockPriceSource
	metrics *mocks.MockMetrics
	clock   time.Time
}

func TestPriceGuardSuite(t *testing.T) {
	suite.Run(t, new(PriceGuardTestSuite))
}

func (s *PriceGuardTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.next = mocks.NewMockPriceSource(s.ctrl)
	s.metrics = mocks.NewMockMetrics(s.ctrl)
	s.metrics.EXPECT().RecordError(gomock.Any()).AnyTimes()
	s.metrics.EXPECT().RecordLatency(gomock.Any(), gomock.Any()).AnyTimes()
	s.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PriceGuardTestSuite) guard() *PriceGuard {
	return NewPriceGuard(s.next, s.metrics,
		WithMinInterval(30*time.Second),
		WithMaxStale(10*time.Minute),
		withClock(func() time.Time { return s.clock }),
	)
}

func (s *PriceGuardTestSuite) TestThrottlesRepeatedRequests() {
	g := s.guard()
	s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return([]float64{1, 2, 3}, nil).Times(1)

	first, err := g.GetCloses(context.Background(), "BTC", 3)
	s.Require().NoError(err)
	s.clock = s.clock.Add(10 * time.Second)
	second, err := g.GetCloses(context.Background(), "BTC", 2)
	s.Require().NoError(err)

	s.Equal([]float64{1, 2, 3}, first)
	s.Equal([]float64{2, 3}, second)
}

func (s *PriceGuardTestSuite) TestFetchesAgainAfterInterval() {
	g := s.guard()
	s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return([]float64{1, 2, 3}, nil).Times(2)

	_, _ = g.GetCloses(context.Background(), "BTC", 3)
	s.clock = s.clock.Add(31 * time.Second)
	_, err := g.GetCloses(context.Background(), "BTC", 3)
	s.NoError(err)
}

func (s *PriceGuardTestSuite) TestServesStaleSeriesOnFailure() {
	g := s.guard()
	gomock.InOrder(
		s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return([]float64{1, 2, 3}, nil),
		s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return(nil, errors.New("429")),
		s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return(nil, errors.New("429")),
	)

	_, _ = g.GetCloses(context.Background(), "BTC", 3)
	s.clock = s.clock.Add(time.Minute)
	got, err := g.GetCloses(context.Background(), "BTC", 3)
	s.Require().NoError(err)
	s.Equal([]float64{1, 2, 3}, got)

	s.clock = s.clock.Add(time.Hour)
	_, err = g.GetCloses(context.Background(), "BTC", 3)
	s.Error(err)
}

func (s *PriceGuardTestSuite) TestRejectsInvalidSeries() {
	g := s.guard()
	s.next.EXPECT().GetCloses(gomock.Any(), "ETH", 3).Return([]float64{1, 0, 3}, nil)

	_, err := g.GetCloses(context.Background(), "ETH", 3)
	s.Error(err)
}

func (s *PriceGuardTestSuite) TestValidatesArguments() {
	g := s.guard()
	_, err := g.GetCloses(context.Background(), "", 3)
	s.Error(err)
	_, err = g.GetCloses(context.Background(), "BTC", 0)
	s.Error(err)
}

func (s *PriceGuardTestSuite) TestDoesNotReuseShorterSeries() {
	g := s.guard()
	s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 2).Return([]float64{1, 2}, nil)
	s.next.EXPECT().GetCloses(gomock.Any(), "BTC", 3).Return([]float64{1, 2, 3}, nil)

	_, _ = g.GetCloses(context.Background(), "BTC", 2)
	got, err := g.GetCloses(context.Background(), "BTC", 3)
	s.Require().NoError(err)
	s.Len(got, 3)
}
