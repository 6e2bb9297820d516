package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillStatsSplitsLongReplies(t *testing.T) {
	stats := []KillStat{}
	for i := 0; i < 100; i++ {
		stats = append(stats, KillStat{KillerId: int64(i), ShipKilled: "Constellation Andromeda", PilotKilled: fmt.Sprintf("pilot-%d", i), Kills: i})
	}

	messages := contents(t, KillStats(stats))
	assert.Greater(t, len(messages), 1)
	assert.True(t, strings.HasPrefix(messages[0], "Kill Stats:\n"))

	total := 0
	for _, message := range messages {
		assert.LessOrEqual(t, len(message), maxMessageLength)
		total += strings.Count(message, "User ID: ")
	}
	assert.Equal(t, len(stats), total)
}

func TestKillStatsOversizedFirstBlockKeepsHeader(t *testing.T) {
	stats := []KillStat{
		{KillerId: 1, ShipKilled: strings.Repeat("x", maxMessageLength), PilotKilled: "Vex", Kills: 1},
		{KillerId: 2, ShipKilled: "Cutlass", PilotKilled: "Vex", Kills: 3},
	}

	messages := contents(t, KillStats(stats))
	require.Len(t, messages, 2)
	assert.True(t, strings.HasPrefix(messages[0], "Kill Stats:\nUser ID: 1\n"))
	assert.True(t, strings.HasPrefix(messages[1], "User ID: 2\n"))
}

func TestKillStatsWithoutData(t *testing.T) {
	assert.Equal(t, []string{"No kill data available."}, contents(t, KillStats(nil)))
}

func TestLookupThrottledRoundsUp(t *testing.T) {
	assert.Equal(t, []string{"Too many lookups right now, try again in 1s."}, contents(t, LookupThrottled(300*time.Millisecond)))
	assert.Equal(t, []string{"Too many lookups right now, try again in 42s."}, contents(t, LookupThrottled(42*time.Second)))
}
