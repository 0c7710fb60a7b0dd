package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Режимы подключения супервизора к разговору
const (
	MonitorListen  = "listen"  // молчаливое прослушивание
	MonitorWhisper = "whisper" // слышит только агент
	MonitorBarge   = "barge"   // трехсторонний разговор
)

var (
	ErrInvalidMonitorMode = errors.New("invalid monitor mode")
	ErrEmptyBroadcast     = errors.New("broadcast message is empty")
)

// Agent состояние агента колл-центра, как его сообщает PBX
type Agent struct {
	Extension  string     `json:"extension"`
	Name       string     `json:"name"`
	Status     string     `json:"status"` // available, on_call, paused, offline
	CallsTaken int        `json:"calls_taken"`
	LastCallAt *time.Time `json:"last_call_at,omitempty"`
}

// ActiveCall активный разговор в очереди или на агенте
type ActiveCall struct {
	ID             string    `json:"id"`
	CallerID       string    `json:"caller_id"`
	AgentExtension string    `json:"agent_extension"`
	Queue          string    `json:"queue,omitempty"`
	State          string    `json:"state"`
	StartedAt      time.Time `json:"started_at"`
}

// PBXClient интерфейс управления звонками, реализуемый снаружи.
// Этот сервис не моделирует телефонию, только границу с ней.
type PBXClient interface {
	ListAgents(ctx context.Context) ([]Agent, error)
	ListActiveCalls(ctx context.Context) ([]ActiveCall, error)
	Monitor(ctx context.Context, callID, mode, supervisorExt string) error
	Broadcast(ctx context.Context, message string, extensions []string) error
}

// SupervisorService тонкая обертка над PBX для страниц супервизора
type SupervisorService struct {
	client PBXClient
	log    *zap.Logger
}

// NewSupervisorService создает новый supervisor сервис
func NewSupervisorService(client PBXClient, log *zap.Logger) *SupervisorService {
	return &SupervisorService{
		client: client,
		log:    log,
	}
}

// ListAgents возвращает состояние агентов
func (s *SupervisorService) ListAgents(ctx context.Context) ([]Agent, error) {
	agents, err := s.client.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// ListActiveCalls возвращает активные разговоры
func (s *SupervisorService) ListActiveCalls(ctx context.Context) ([]ActiveCall, error) {
	calls, err := s.client.ListActiveCalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active calls: %w", err)
	}
	return calls, nil
}

// Monitor подключает супервизора к разговору в одном из режимов
// listen/whisper/barge
func (s *SupervisorService) Monitor(ctx context.Context, callID, mode, supervisorExt string) error {
	switch mode {
	case MonitorListen, MonitorWhisper, MonitorBarge:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMonitorMode, mode)
	}

	if err := s.client.Monitor(ctx, callID, mode, supervisorExt); err != nil {
		return fmt.Errorf("failed to monitor call %s: %w", callID, err)
	}

	s.log.Info("supervisor monitoring started",
		zap.String("call_id", callID),
		zap.String("mode", mode),
		zap.String("supervisor_ext", supervisorExt))
	return nil
}

// Broadcast рассылает сообщение на указанные добавочные номера
// (все, если список пуст)
func (s *SupervisorService) Broadcast(ctx context.Context, message string, extensions []string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyBroadcast
	}

	if err := s.client.Broadcast(ctx, message, extensions); err != nil {
		return fmt.Errorf("failed to broadcast message: %w", err)
	}

	s.log.Info("broadcast message sent", zap.Int("extensions", len(extensions)))
	return nil
}
