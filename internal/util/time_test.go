package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetTimeProvider() {
	timeMu.Lock()
	globalTimeProvider = nil
	timeMu.Unlock()
}

func TestInitializeTimeProvider(t *testing.T) {
	resetTimeProvider()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "named timezone", timezone: "Europe/Berlin"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, GetTimeProvider())
		})
	}
}

func TestInitializeTimeProvider_KeepsPreviousOnError(t *testing.T) {
	resetTimeProvider()
	require.NoError(t, InitializeTimeProvider("UTC"))

	require.Error(t, InitializeTimeProvider("Nowhere/Special"))

	assert.Equal(t, time.UTC, GetTimeProvider().Location())
}

func TestGetTimeProvider_DefaultsToLocal(t *testing.T) {
	resetTimeProvider()

	provider := GetTimeProvider()
	require.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
	assert.Equal(t, time.Local, provider.Location())
}

func TestTimeProvider_NowUsesClockAndZone(t *testing.T) {
	tp, err := NewTimeProvider("UTC")
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600))
	tp.SetClock(func() time.Time { return fixed })

	now := tp.Now()

	assert.True(t, now.Equal(fixed))
	assert.Equal(t, time.UTC, now.Location())
	assert.Equal(t, "06:08:09", tp.Clock(fixed))
}

func TestTimeProvider_ClockZero(t *testing.T) {
	tp, err := NewTimeProvider("UTC")
	require.NoError(t, err)

	assert.Equal(t, "--:--:--", tp.Clock(time.Time{}))
}

func TestTimeProvider_ConcurrentAccess(t *testing.T) {
	tp, err := NewTimeProvider("UTC")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = tp.SetTimezone("UTC")
		}()
		go func() {
			defer wg.Done()
			_ = tp.Format(time.Now(), time.RFC3339)
		}()
	}
	wg.Wait()
}
