package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/database/databasetest"
	"github.com/thereayou/mindsync/internal/models"
)

func seedUser(t *testing.T, db *database.Database, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.SaveUser(context.Background(), u))
	return u
}

func seedMessages(t *testing.T, db *database.Database, user *models.User, k int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < k; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAI
		}
		require.NoError(t, db.SaveMessage(context.Background(), &models.Message{
			UserID:    user.ID,
			Role:      role,
			Content:   fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func contents(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestGetRecentMessages_UnderLimit(t *testing.T) {
	db := databasetest.New(t)
	u := seedUser(t, db, "a@example.com")
	seedMessages(t, db, u, 3)

	msgs, err := db.GetRecentMessages(context.Background(), u.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"m0", "m1", "m2"}, contents(msgs))
}

func TestGetRecentMessages_OverLimitDropsOldest(t *testing.T) {
	db := databasetest.New(t)
	u := seedUser(t, db, "a@example.com")
	seedMessages(t, db, u, 25)

	msgs, err := db.GetRecentMessages(context.Background(), u.ID, 20)
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	assert.Equal(t, "m5", msgs[0].Content)
	assert.Equal(t, "m24", msgs[19].Content)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i-1].CreatedAt.Before(msgs[i].CreatedAt))
	}
}

func TestGetRecentMessages_ScopedToUser(t *testing.T) {
	db := databasetest.New(t)
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")
	seedMessages(t, db, a, 2)
	seedMessages(t, db, b, 4)

	msgs, err := db.GetRecentMessages(context.Background(), a.ID, 20)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, a.ID, m.UserID)
	}
}

func TestDeleteUserMessages(t *testing.T) {
	db := databasetest.New(t)
	ctx := context.Background()
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")
	seedMessages(t, db, a, 3)
	seedMessages(t, db, b, 2)

	require.NoError(t, db.DeleteUserMessages(ctx, a.ID))

	history, err := db.GetMessages(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)

	// повторный вызов ничего не ломает
	require.NoError(t, db.DeleteUserMessages(ctx, a.ID))

	other, err := db.GetMessages(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, other, 2)
}
