package handler

import (
	"time"

	"prisonersearch/internal/index/models"
	prisonermodels "prisonersearch/internal/prisoner/models"
)

type IndexStatusResponse struct {
	CurrentSlot      models.Slot  `json:"currentIndex"`
	CurrentState     models.State `json:"currentIndexState"`
	CurrentStartTime *time.Time   `json:"currentIndexStartBuildTime,omitempty"`
	CurrentEndTime   *time.Time   `json:"currentIndexEndBuildTime,omitempty"`
	OtherSlot        models.Slot  `json:"otherIndex"`
	OtherState       models.State `json:"otherIndexState"`
	OtherStartTime   *time.Time   `json:"otherIndexStartBuildTime,omitempty"`
	OtherEndTime     *time.Time   `json:"otherIndexEndBuildTime,omitempty"`
}

func FromStatus(s models.IndexStatus) IndexStatusResponse {
	return IndexStatusResponse{
		CurrentSlot:      s.CurrentSlot,
		CurrentState:     s.CurrentState,
		CurrentStartTime: s.CurrentStartTime,
		CurrentEndTime:   s.CurrentEndTime,
		OtherSlot:        s.OtherSlot(),
		OtherState:       s.OtherState,
		OtherStartTime:   s.OtherStartTime,
		OtherEndTime:     s.OtherEndTime,
	}
}

type QueueStatusResponse struct {
	Visible      int64 `json:"messagesOnQueue"`
	InFlight     int64 `json:"messagesInFlight"`
	DeadLettered int64 `json:"messagesOnDlq"`
	Active       bool  `json:"active"`
}

func FromQueueStatus(q models.QueueStatus) QueueStatusResponse {
	return QueueStatusResponse{
		Visible:      q.Visible,
		InFlight:     q.InFlight,
		DeadLettered: q.DeadLettered,
		Active:       q.Active(),
	}
}

type StatusResponse struct {
	Index IndexStatusResponse  `json:"index"`
	Queue *QueueStatusResponse `json:"queue,omitempty"`
}

// ConflictResponse extends the error body with the lifecycle state that
// caused the rejection.
type ConflictResponse struct {
	Error            string                `json:"error"`
	ErrorDescription string                `json:"error_description"`
	Reason           models.ConflictReason `json:"reason"`
	Status           IndexStatusResponse   `json:"status"`
	Queue            *QueueStatusResponse  `json:"queue,omitempty"`
}

type IndexPrisonerResponse struct {
	Prisoner           *prisonermodels.Prisoner `json:"prisoner"`
	EnrichmentFailures []string                 `json:"enrichmentFailures,omitempty"`
}

type RetryDLQResponse struct {
	Retried int `json:"retried"`
}
