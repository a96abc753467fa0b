package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/models"
	"gorm.io/gorm"
)

// SaveUser создаёт пользователя; занятый email возвращает ErrEmailTaken
func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	if _, err := d.FindUserByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		// гонка двух регистраций ловится уникальным индексом
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (d *Database) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	return d.updateUser(ctx, id, map[string]any{"avatar": avatar})
}

func (d *Database) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	return d.updateUser(ctx, id, map[string]any{"stripe_customer_id": customerID})
}

// SetSubscribed меняет флаг подписки; пустой customerID не трогает сохранённый
func (d *Database) SetSubscribed(ctx context.Context, id uuid.UUID, subscribed bool, customerID string) error {
	fields := map[string]any{"is_subscribed": subscribed}
	if customerID != "" {
		fields["stripe_customer_id"] = customerID
	}
	return d.updateUser(ctx, id, fields)
}

func (d *Database) updateUser(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
