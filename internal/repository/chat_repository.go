package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reminders/internal/model"
)

// ChatRepository stores the chats digests are delivered to.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Upsert finds or creates the chat and refreshes its profile info.
func (r *ChatRepository) Upsert(ctx context.Context, id int64, username, firstName string) (*model.Chat, error) {
	var chat model.Chat
	db := r.db.WithContext(ctx)
	err := db.First(&chat, "id = ?", id).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"username":   username,
			"first_name": firstName,
		}
		if err := db.Model(&chat).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update chat: %w", err)
		}
		chat.Username = username
		chat.FirstName = firstName
		return &chat, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		chat = model.Chat{
			ID:        id,
			Username:  username,
			FirstName: firstName,
		}
		if err := db.Create(&chat).Error; err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
		return &chat, nil
	default:
		return nil, fmt.Errorf("find chat: %w", err)
	}
}

func (r *ChatRepository) List(ctx context.Context) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.WithContext(ctx).Order("created_at").Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}
