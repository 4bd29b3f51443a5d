package service

import (
	"sync"

	"data-chat-be/internal/dto"
	"data-chat-be/internal/repository/memory"
)

type IStatsService interface {
	Record(msg dto.QueryHandledMessage)
	Snapshot() *dto.StatsResponse
}

type statsService struct {
	sessionRepo *memory.SessionRepository

	mu              sync.Mutex
	handled         int64
	images          int64
	failures        int64
	totalDurationMs int64
}

func NewStatsService(sessionRepo *memory.SessionRepository) IStatsService {
	return &statsService{sessionRepo: sessionRepo}
}

func (s *statsService) Record(msg dto.QueryHandledMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handled++
	s.totalDurationMs += msg.DurationMs
	if msg.HasImage {
		s.images++
	}
	if msg.Failed {
		s.failures++
	}
}

func (s *statsService) Snapshot() *dto.StatsResponse {
	s.mu.Lock()
	res := &dto.StatsResponse{
		QueriesHandled: s.handled,
		ImagesReturned: s.images,
		Failures:       s.failures,
	}
	if s.handled > 0 {
		res.AvgDurationMs = s.totalDurationMs / s.handled
	}
	s.mu.Unlock()

	if s.sessionRepo != nil {
		res.ActiveSessions = s.sessionRepo.Count()
	}
	return res
}
