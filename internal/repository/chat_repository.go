package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talkative-chat/internal/domain/chat"
	apperrors "talkative-chat/pkg/errors"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(c).Error; err != nil {
			return err
		}
		for i := range c.Members {
			c.Members[i].ChatID = c.ID
			if err := tx.Omit("User").Create(&c.Members[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, apperrors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

// FindDirect looks up the existing one-to-one chat between two users.
func (r *PostgresChatRepository) FindDirect(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		Where("is_group = false").
		Where("id IN (?)", r.db.Table("chat_members").Select("chat_id").Where("user_id = ?", userA)).
		Where("id IN (?)", r.db.Table("chat_members").Select("chat_id").Where("user_id = ?", userB)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, apperrors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var chats []chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		Where("id IN (?)", r.db.Table("chat_members").Select("chat_id").Where("user_id = ?", userID)).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) AddMember(ctx context.Context, chatID, userID uuid.UUID) error {
	m := chat.Member{ChatID: chatID, UserID: userID, JoinedAt: time.Now()}
	err := r.db.WithContext(ctx).Omit("User").Create(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresChatRepository) RemoveMember(ctx context.Context, chatID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&chat.Member{}).Error
}

func (r *PostgresChatRepository) SetLatestMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"latest_message_id": messageID,
			"updated_at":        time.Now(),
		}).Error
}
