//go:build integration

package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"prisonersearch/internal/queue"
	"prisonersearch/pkg/testutil/containers"
)

type RedisQueueSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	queue *queue.RedisQueue
}

func TestRedisQueueSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisQueueSuite))
}

func (s *RedisQueueSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisQueueSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
	s.queue = queue.NewRedis(s.redis.Client, "test-index", queue.Options{
		VisibilityTimeout: 50 * time.Millisecond,
		MaxReceives:       2,
	})
}

func (s *RedisQueueSuite) send(msgType string) {
	msg, err := queue.NewMessage(msgType, map[string]int{"page": 1})
	s.Require().NoError(err)
	_, err = s.queue.Send(context.Background(), msg)
	s.Require().NoError(err)
}

func (s *RedisQueueSuite) depth() queue.Depth {
	d, err := s.queue.Depth(context.Background())
	s.Require().NoError(err)
	return d
}

func (s *RedisQueueSuite) TestSendReceiveAck() {
	ctx := context.Background()
	s.send("ONE")
	s.send("TWO")
	s.Equal(queue.Depth{Visible: 2}, s.depth())

	got, err := s.queue.Receive(ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("ONE", got[0].Message.Type)
	s.Equal("TWO", got[1].Message.Type)
	s.Equal(1, got[0].ReceiveCount)
	s.Equal(queue.Depth{InFlight: 2}, s.depth())

	var page map[string]int
	s.Require().NoError(got[0].Message.Decode(&page))
	s.Equal(1, page["page"])

	for _, d := range got {
		s.Require().NoError(s.queue.Ack(ctx, d.ID))
	}
	s.Equal(queue.Depth{}, s.depth())
}

func (s *RedisQueueSuite) TestExpiredMessagesRedriveToDeadLetter() {
	ctx := context.Background()
	s.send("FLAKY")

	for attempt := 1; attempt <= 2; attempt++ {
		got, err := s.queue.Receive(ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(attempt, got[0].ReceiveCount)

		time.Sleep(100 * time.Millisecond)
		_, _, err = s.queue.Requeue(ctx)
		s.Require().NoError(err)
	}
	s.Equal(queue.Depth{DeadLettered: 1}, s.depth())

	moved, err := s.queue.RetryDeadLetters(ctx)
	s.Require().NoError(err)
	s.Equal(1, moved)
	s.Equal(queue.Depth{Visible: 1}, s.depth())
}

func (s *RedisQueueSuite) TestPurge() {
	ctx := context.Background()
	s.send("A")
	s.send("B")
	_, err := s.queue.Receive(ctx, 1)
	s.Require().NoError(err)

	s.Require().NoError(s.queue.Purge(ctx))
	s.Equal(queue.Depth{}, s.depth())

	got, err := s.queue.Receive(ctx, 1)
	s.Require().NoError(err)
	s.Empty(got)
}
