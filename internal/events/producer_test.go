package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AddsEnvelope(t *testing.T) {
	t.Parallel()

	fields := map[string]any{"productID": uint(7), "type": "ignored"}
	e := New("product_created", fields)

	assert.Equal(t, "product_created", e["type"])
	assert.Equal(t, uint(7), e["productID"])
	_, err := uuid.Parse(e["event_id"].(string))
	require.NoError(t, err)
	assert.NotNil(t, e["at"])

	assert.Equal(t, "ignored", fields["type"])
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "1", New("order_created", nil)))
	require.NoError(t, p.Close())
}
