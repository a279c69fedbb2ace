package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/models"
)

func TestAppendPendingText(t *testing.T) {
	thread := NewThread("7")
	msg := thread.AppendPendingText("hello", "2025-03-01 10:00:00")

	assert.True(t, strings.HasPrefix(msg.ID, models.TempIDPrefix))
	assert.True(t, msg.Pending)
	assert.True(t, msg.FromCompany())
	assert.Equal(t, 1, thread.Len())
}

func TestCompanyEchoSettlesPlaceholder(t *testing.T) {
	thread := NewThread("7")
	placeholder := thread.AppendPendingText("hello", "2025-03-01 10:00:00")

	changed := thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		MessageID:  "501",
		Text:       "hello",
		SenderType: models.SenderCompany,
		Timestamp:  "2025-03-01 10:00:02",
	})
	require.True(t, changed)

	messages := thread.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "501", messages[0].ID)
	assert.NotEqual(t, placeholder.ID, messages[0].ID)
	assert.False(t, messages[0].Pending)
}

func TestEchoSettlesMostRecentMatchingPlaceholder(t *testing.T) {
	thread := NewThread("7")
	first := thread.AppendPendingText("ping", "t1")
	second := thread.AppendPendingText("ping", "t2")

	thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		MessageID:  "900",
		Text:       "ping",
		SenderType: models.SenderCompany,
		Timestamp:  "t3",
	})

	messages := thread.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, "900", messages[1].ID)
	assert.NotEqual(t, second.ID, messages[1].ID)
}

func TestCustomerEventsAppend(t *testing.T) {
	thread := NewThread("7")
	changed := thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		MessageID:  "300",
		Text:       "hi there",
		SenderType: models.SenderCustomer,
		Timestamp:  "2025-03-01 10:00:00",
	})
	require.True(t, changed)
	require.Equal(t, 1, thread.Len())
	assert.False(t, thread.Messages()[0].FromCompany())
}

func TestEventsForOtherContactsAreIgnored(t *testing.T) {
	thread := NewThread("7")
	changed := thread.ApplyEvent(models.MessageEvent{
		ContactID: "8",
		MessageID: "1",
		Text:      "wrong door",
	})
	assert.False(t, changed)
	assert.Equal(t, 0, thread.Len())
}

func TestDuplicateEventsAreDropped(t *testing.T) {
	thread := NewThread("7")
	event := models.MessageEvent{
		ContactID:  "7",
		MessageID:  "300",
		Text:       "hi",
		SenderType: models.SenderCustomer,
		Timestamp:  "t1",
	}
	require.True(t, thread.ApplyEvent(event))
	assert.False(t, thread.ApplyEvent(event))
	assert.Equal(t, 1, thread.Len())
}

func TestEventWithIDMatchingStoredIDLessMessageIsDropped(t *testing.T) {
	thread := NewThread("7")
	require.True(t, thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		Text:       "hi",
		SenderType: models.SenderCustomer,
		Timestamp:  "t1",
	}))

	changed := thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		MessageID:  "300",
		Text:       "hi",
		SenderType: models.SenderCustomer,
		Timestamp:  "t1",
	})
	assert.False(t, changed)
	assert.Equal(t, 1, thread.Len())
}

func TestIDLessDuplicateDroppedByTriple(t *testing.T) {
	thread := NewThread("7")
	thread.Load([]models.Message{
		{ID: "300", Text: "hi", SenderType: models.SenderCustomer, Timestamp: "t1"},
	})

	changed := thread.ApplyEvent(models.MessageEvent{
		ContactID:  "7",
		Text:       "hi",
		SenderType: models.SenderCustomer,
		Timestamp:  "t1",
	})
	assert.False(t, changed)
	assert.Equal(t, 1, thread.Len())
}

func TestLoadDropsPlaceholderOncePageCarriesTheSend(t *testing.T) {
	thread := NewThread("7")
	thread.AppendPendingText("landed", "t2")

	thread.Load([]models.Message{
		{ID: "50", Text: "landed", SenderType: models.SenderCompany, Timestamp: "t2.5"},
	})

	messages := thread.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "50", messages[0].ID)
}

func TestLoadKeepsUnsettledPlaceholders(t *testing.T) {
	thread := NewThread("7")
	placeholder := thread.AppendPendingText("in flight", "t2")

	thread.Load([]models.Message{
		{ID: "1", Text: "old", SenderType: models.SenderCustomer, Timestamp: "t1"},
	})

	messages := thread.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "1", messages[0].ID)
	assert.Equal(t, placeholder.ID, messages[1].ID)
}

func TestConfirmPatchesInPlace(t *testing.T) {
	thread := NewThread("7")
	thread.Load([]models.Message{{ID: "1", Text: "before", SenderType: models.SenderCustomer}})
	placeholder := thread.AppendPendingText("sending", "t1")
	thread.ApplyEvent(models.MessageEvent{
		ContactID: "7", MessageID: "2", Text: "after",
		SenderType: models.SenderCustomer, Timestamp: "t2",
	})

	require.True(t, thread.Confirm(placeholder.ID, models.Message{ID: "55", Timestamp: "t1.5"}))

	messages := thread.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "55", messages[1].ID)
	assert.Equal(t, "sending", messages[1].Text)
	assert.False(t, messages[1].Pending)
}

func TestMarkFailedAndRetry(t *testing.T) {
	thread := NewThread("7")
	placeholder := thread.AppendPendingText("flaky", "t1")

	require.True(t, thread.MarkFailed(placeholder.ID))
	assert.True(t, thread.Messages()[0].Failed)
	assert.False(t, thread.Messages()[0].Pending)

	retried, ok := thread.Retry(placeholder.ID)
	require.True(t, ok)
	assert.Equal(t, "flaky", retried.Text)
	assert.True(t, thread.Messages()[0].Pending)
}

func TestMediaPlaceholderLifecycle(t *testing.T) {
	thread := NewThread("7")
	placeholder := thread.AppendPendingMedia(
		models.Media{Type: models.MediaImage, FileName: "pic.jpg"}, "caption", "t1")

	require.True(t, thread.ConfirmMedia(placeholder.ID, "801",
		models.Media{Type: models.MediaImage, FilePath: "/m/801.jpg", FileName: "pic.jpg"}))

	msg := thread.Messages()[0]
	assert.Equal(t, "801", msg.ID)
	assert.Equal(t, "/m/801.jpg", msg.Media.FilePath)
	assert.False(t, msg.Pending)
}

func TestRemoveDropsPlaceholder(t *testing.T) {
	thread := NewThread("7")
	placeholder := thread.AppendPendingMedia(models.Media{Type: models.MediaDocument}, "", "t1")
	require.True(t, thread.Remove(placeholder.ID))
	assert.Equal(t, 0, thread.Len())
	assert.False(t, thread.Remove(placeholder.ID))
}
