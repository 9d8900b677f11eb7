package notification

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterBuddyAPI/internal/types/reminder"
)

func TestBuildMessageByPlatform(t *testing.T) {
	data := map[string]string{"type": "water_reminder"}

	ios := buildMessage(reminder.DeviceToken{Token: "a", Platform: "ios"}, "Title", "Body", data)
	require.NotNil(t, ios.APNS)
	assert.Equal(t, "default", ios.APNS.Payload.Aps.Sound)
	assert.Nil(t, ios.Android)
	assert.Nil(t, ios.Webpush)

	web := buildMessage(reminder.DeviceToken{Token: "b", Platform: "web"}, "Title", "Body", data)
	require.NotNil(t, web.Webpush)
	assert.Equal(t, "Title", web.Webpush.Notification.Title)

	android := buildMessage(reminder.DeviceToken{Token: "c", Platform: "android"}, "Title", "Body", data)
	require.NotNil(t, android.Android)
	assert.Equal(t, "high", android.Android.Priority)

	for _, m := range []string{ios.Token, web.Token, android.Token} {
		assert.NotEmpty(t, m)
	}
	assert.Equal(t, "Body", android.Notification.Body)
	assert.Equal(t, data, android.Data)
}

func TestNewFCMServiceWithoutCredentials(t *testing.T) {
	t.Setenv("FCM_SERVICE_ACCOUNT_JSON", "")

	_, err := NewFCMService(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	t.Setenv("FCM_SERVICE_ACCOUNT_JSON", "%%%not-base64")
	_, err = NewFCMService(context.Background(), "")
	assert.Error(t, err)
}

func TestSendPushWithoutTokensIsNoop(t *testing.T) {
	s := &FCMService{}
	assert.NoError(t, s.SendPush(context.Background(), nil, "t", "b", nil))
}
