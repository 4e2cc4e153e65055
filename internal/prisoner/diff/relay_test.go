package diff

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
)

func (s *EngineSuite) TestRelayDrainsEveryRecordedEvent() {
	for i := range relayBatch + 5 {
		doc := prisoner()
		doc.PrisonerNumber = "A" + strconv.Itoa(1000+i) + "AA"
		s.Require().NoError(s.engine.HandleDifferences(s.ctx, doc.PrisonerNumber, nil, doc))
	}

	relay := NewOutboxRelay(s.engine, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	relay.drain(s.ctx)

	s.Len(s.events.Events(), relayBatch+5, "drains past the first batch")
	s.Empty(s.pending())
}

func (s *EngineSuite) TestRelayKeepsEventsWhilePublishingFails() {
	doc := prisoner()
	s.Require().NoError(s.engine.HandleDifferences(s.ctx, doc.PrisonerNumber, nil, doc))
	s.events.FailWith(errors.New("broker unavailable"))

	relay := NewOutboxRelay(s.engine, 0, nil)
	relay.drain(s.ctx)
	s.Len(s.pending(), 1)

	s.events.FailWith(nil)
	relay.drain(s.ctx)
	s.Len(s.events.Events(), 1)
	s.Empty(s.pending())
}
