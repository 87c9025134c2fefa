package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

type IChatService interface {
	Join(role domain.Role, sink contract.EventSink)
	Leave(role domain.Role, sink contract.EventSink)
	Replay(ctx context.Context, sink contract.EventSink) error
	Post(ctx context.Context, role domain.Role, body string) (domain.Message, error)
	Clear(ctx context.Context) error
}

type ChatService struct {
	coordinator *runtime.Coordinator
}

func NewChatService(coordinator *runtime.Coordinator) *ChatService {
	return &ChatService{coordinator: coordinator}
}

func (s *ChatService) Join(role domain.Role, sink contract.EventSink) {
	s.coordinator.Join(role, sink)
}

func (s *ChatService) Leave(role domain.Role, sink contract.EventSink) {
	s.coordinator.Leave(role, sink)
}

func (s *ChatService) Replay(ctx context.Context, sink contract.EventSink) error {
	return s.coordinator.Replay(ctx, sink)
}

func (s *ChatService) Post(ctx context.Context, role domain.Role, body string) (domain.Message, error) {
	return s.coordinator.Post(ctx, role, body)
}

func (s *ChatService) Clear(ctx context.Context) error {
	return s.coordinator.Clear(ctx)
}
