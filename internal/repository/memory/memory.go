package memory

import (
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

type MemStorage struct {
	mu               sync.RWMutex
	adminsByUsername map[string]*domain.Admin
	sessionsByToken  map[string]*domain.AdminSession
	events           []*domain.SecurityEvent
	schedules        map[string]*domain.BackupSchedule
	adminCounter     int64
}

func New() *MemStorage {
	return &MemStorage{
		adminsByUsername: make(map[string]*domain.Admin),
		sessionsByToken:  make(map[string]*domain.AdminSession),
		schedules:        make(map[string]*domain.BackupSchedule),
	}
}

// --- Admin Methods ---

func (s *MemStorage) GetAdminByUsername(_ context.Context, username string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.adminsByUsername[username]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	copied := *admin
	return &copied, nil
}

func (s *MemStorage) CreateAdmin(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.adminsByUsername[admin.Username]; exists {
		return repository.ErrAdminExists
	}
	s.adminCounter++
	admin.ID = s.adminCounter
	admin.CreatedAt = time.Now()
	copied := *admin
	s.adminsByUsername[admin.Username] = &copied
	return nil
}

func (s *MemStorage) UpdateAdmin(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.adminsByUsername[admin.Username]; !ok {
		return repository.ErrAdminNotFound
	}
	copied := *admin
	s.adminsByUsername[admin.Username] = &copied
	return nil
}

// --- Session Methods ---

func (s *MemStorage) CreateSession(_ context.Context, session *domain.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessionsByToken[session.Token] = &copied
	return nil
}

func (s *MemStorage) GetSessionByToken(_ context.Context, token string) (*domain.AdminSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessionsByToken[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *MemStorage) SaveSession(_ context.Context, session *domain.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessionsByToken[session.Token]; !ok {
		return repository.ErrSessionNotFound
	}
	copied := *session
	s.sessionsByToken[session.Token] = &copied
	return nil
}

func (s *MemStorage) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessionsByToken[token]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessionsByToken, token)
	return nil
}

func (s *MemStorage) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for token, session := range s.sessionsByToken {
		if session.SessionExpiresAt != nil && session.SessionExpiresAt.Before(now) {
			delete(s.sessionsByToken, token)
			removed++
		}
	}
	return removed, nil
}

// --- Security Event Methods ---

func (s *MemStorage) RecordSecurityEvent(_ context.Context, event *domain.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

func (s *MemStorage) ListSecurityEvents(_ context.Context, limit int) ([]*domain.SecurityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*domain.SecurityEvent, len(s.events))
	for i, event := range s.events {
		copied := *event
		events[i] = &copied
	}
	// Новые события первыми
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// --- Backup Schedule Methods ---

func (s *MemStorage) SaveBackupSchedule(_ context.Context, schedule *domain.BackupSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *schedule
	s.schedules[schedule.ID] = &copied
	return nil
}

func (s *MemStorage) GetBackupSchedule(_ context.Context, id string) (*domain.BackupSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (s *MemStorage) ListBackupSchedules(_ context.Context) ([]*domain.BackupSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedules := make([]*domain.BackupSchedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		copied := *schedule
		schedules = append(schedules, &copied)
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt.Before(schedules[j].CreatedAt)
	})
	return schedules, nil
}

func (s *MemStorage) DeleteBackupSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return repository.ErrScheduleNotFound
	}
	delete(s.schedules, id)
	return nil
}
