package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/repository"
	"github.com/mangaswap/mangaswap-backend/internal/stream"
	"gorm.io/gorm"
)

type ChatService interface {
	Get(ctx context.Context, chatID uint64, callerUID string) (*model.ChatChannel, error)
	ListByUser(ctx context.Context, uid string) ([]model.ChatChannel, error)
	ListMessages(ctx context.Context, chatID uint64, callerUID string) ([]model.Message, error)
	SendMessage(ctx context.Context, chatID uint64, senderUID, body string) (*model.Message, error)
	// Unsend hard-deletes the message. Only its sender may do so.
	Unsend(ctx context.Context, chatID, messageID uint64, callerUID string) error
	// DeleteChannel cascades: messages, the channel, the listing, and all
	// requests referencing the listing, in one transaction.
	DeleteChannel(ctx context.Context, chatID uint64, callerUID string) error
	// Subscribe returns a live event feed for the chat. The returned
	// cancel must be called when the consumer loses interest.
	Subscribe(ctx context.Context, chatID uint64, callerUID string) (<-chan stream.Event, func(), error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	broker   *stream.Broker
}

func NewChatService(chatRepo repository.ChatRepository, broker *stream.Broker) ChatService {
	return &chatService{chatRepo: chatRepo, broker: broker}
}

func (s *chatService) Get(ctx context.Context, chatID uint64, callerUID string) (*model.ChatChannel, error) {
	ch, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ch.HasParticipant(callerUID) {
		return nil, ErrForbidden
	}
	return ch, nil
}

func (s *chatService) ListByUser(ctx context.Context, uid string) ([]model.ChatChannel, error) {
	return s.chatRepo.ListByUser(ctx, uid)
}

func (s *chatService) ListMessages(ctx context.Context, chatID uint64, callerUID string) ([]model.Message, error) {
	if _, err := s.Get(ctx, chatID, callerUID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, chatID)
}

func (s *chatService) SendMessage(ctx context.Context, chatID uint64, senderUID, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if _, err := s.Get(ctx, chatID, senderUID); err != nil {
		return nil, err
	}
	msg := &model.Message{
		ChatID:    chatID,
		SenderUID: senderUID,
		Body:      body,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.broker.Publish(stream.Event{Type: stream.EventMessage, ChatID: chatID, Message: msg})
	return msg, nil
}

func (s *chatService) Unsend(ctx context.Context, chatID, messageID uint64, callerUID string) error {
	if _, err := s.Get(ctx, chatID, callerUID); err != nil {
		return err
	}
	msg, err := s.chatRepo.FindMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if msg.ChatID != chatID {
		return ErrNotFound
	}
	if msg.SenderUID != callerUID {
		return ErrNotSender
	}
	if err := s.chatRepo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.broker.Publish(stream.Event{Type: stream.EventUnsend, ChatID: chatID, MessageID: messageID})
	return nil
}

func (s *chatService) DeleteChannel(ctx context.Context, chatID uint64, callerUID string) error {
	ch, err := s.Get(ctx, chatID, callerUID)
	if err != nil {
		return err
	}
	return s.chatRepo.DeleteCascade(ctx, chatID, ch.ListingID)
}

func (s *chatService) Subscribe(ctx context.Context, chatID uint64, callerUID string) (<-chan stream.Event, func(), error) {
	if _, err := s.Get(ctx, chatID, callerUID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.broker.Subscribe(chatID)
	return ch, cancel, nil
}
