package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

func TestThroughput_Empty(t *testing.T) {
	tp := NewThroughput(time.Minute, epoch)
	assert.Equal(t, 0, tp.Seen())
	assert.Equal(t, 0.0, tp.PerSecond(), "no elapsed time yields 0")
	assert.Equal(t, 0.0, tp.RecentPerSecond())
	assert.Equal(t, 0.0, tp.PassedPct())
	assert.Equal(t, "count: 0/0 (0.00%) secs 0 (0 tps)", tp.String())
}

func TestThroughput_Totals(t *testing.T) {
	tp := NewThroughput(time.Minute, epoch)
	// 400 items over 4 seconds, one in four passing
	for i := 1; i <= 400; i++ {
		tp.RecordAt(epoch.Add(time.Duration(i)*10*time.Millisecond), i%4 == 0)
	}

	assert.Equal(t, 400, tp.Seen())
	assert.Equal(t, 100, tp.Passed())
	assert.Equal(t, 4*time.Second, tp.Elapsed())
	assert.InDelta(t, 100.0, tp.PerSecond(), 1e-9)
	assert.InDelta(t, 25.0, tp.PassedPct(), 1e-9)
	assert.Equal(t, "count: 100/400 (25.00%) secs 4 (100 tps)", tp.String())
}

func TestThroughput_RecentRate(t *testing.T) {
	tp := NewThroughput(10*time.Second, epoch)

	// 1 item/s for the first minute
	for i := 1; i <= 60; i++ {
		tp.RecordAt(epoch.Add(time.Duration(i)*time.Second), true)
	}
	assert.InDelta(t, 1.0, tp.RecentPerSecond(), 1e-9)

	// then 10 items/s for 20 seconds
	base := epoch.Add(60 * time.Second)
	for i := 1; i <= 200; i++ {
		tp.RecordAt(base.Add(time.Duration(i)*100*time.Millisecond), true)
	}
	assert.InDelta(t, 10.0, tp.RecentPerSecond(), 0.5, "window only sees the fast period")
	assert.Less(t, tp.PerSecond(), 4.0, "overall mean still includes the slow minute")
}

func TestThroughput_EvictKeepsOneCheckpoint(t *testing.T) {
	tp := NewThroughput(time.Second, epoch)
	tp.RecordAt(epoch, true)
	tp.RecordAt(epoch.Add(time.Hour), true)
	assert.Len(t, tp.samples, 1)
	assert.Equal(t, 0.0, tp.RecentPerSecond())
}
