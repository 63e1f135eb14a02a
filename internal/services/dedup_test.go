package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

func fp(i int) models.Fingerprint {
	return models.Fingerprint{
		ChatID:    "51987654321@c.us",
		MessageID: fmt.Sprintf("msg-%d", i),
		Timestamp: "1700000000",
	}
}

func TestSeenOrRecordTwice(t *testing.T) {
	g := NewDeduplicationGuard(10, 5)

	assert.False(t, g.SeenOrRecord(fp(1)))
	assert.True(t, g.SeenOrRecord(fp(1)))
	assert.Equal(t, 1, g.Len())
}

func TestFingerprintComponentsAreDistinct(t *testing.T) {
	g := NewDeduplicationGuard(10, 5)

	base := fp(1)
	otherTime := base
	otherTime.Timestamp = "1700000001"
	otherChat := base
	otherChat.ChatID = "51911111111@c.us"

	assert.False(t, g.SeenOrRecord(base))
	assert.False(t, g.SeenOrRecord(otherTime))
	assert.False(t, g.SeenOrRecord(otherChat))
}

func TestEvictionKeepsMostRecent(t *testing.T) {
	g := NewDeduplicationGuard(1000, 500)

	for i := 0; i < 1001; i++ {
		assert.False(t, g.SeenOrRecord(fp(i)))
	}
	assert.Equal(t, 500, g.Len())

	// 501..1000 survive, everything older was evicted.
	assert.True(t, g.SeenOrRecord(fp(1000)))
	assert.True(t, g.SeenOrRecord(fp(501)))
	assert.False(t, g.SeenOrRecord(fp(500)))
	assert.False(t, g.SeenOrRecord(fp(0)))
}

func TestConcurrentDeliveriesAcceptOnce(t *testing.T) {
	g := NewDeduplicationGuard(1000, 500)

	var accepted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.SeenOrRecord(fp(42)) {
				atomic.AddInt32(&accepted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted)
}

func TestForgetAcceptsRedelivery(t *testing.T) {
	g := NewDeduplicationGuard(10, 5)

	assert.False(t, g.SeenOrRecord(fp(1)))
	assert.False(t, g.SeenOrRecord(fp(2)))

	g.Forget(fp(1))
	g.Forget(fp(9))
	assert.Equal(t, 1, g.Len())

	assert.False(t, g.SeenOrRecord(fp(1)))
	assert.True(t, g.SeenOrRecord(fp(2)))
	assert.Equal(t, 2, g.Len())
}
