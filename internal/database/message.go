package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/models"
)

func (d *Database) SaveMessage(ctx context.Context, message *models.Message) error {
	return d.db.WithContext(ctx).Create(message).Error
}

// GetRecentMessages возвращает последние limit сообщений пользователя,
// старые первыми
func (d *Database) GetRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetMessages возвращает всю историю пользователя по возрастанию времени
func (d *Database) GetMessages(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	messages := []models.Message{}

	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&messages).Error

	return messages, err
}

// DeleteUserMessages удаляет всю историю пользователя, повторный вызов ничего не делает
func (d *Database) DeleteUserMessages(ctx context.Context, userID uuid.UUID) error {
	return d.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Message{}).Error
}
