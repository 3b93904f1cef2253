package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded NATS not ready")
	return srv.ClientURL()
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = &NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), TopicFormUpdated, FormChanged{}))
	assert.NoError(t, pub.Close())
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url, "personnel")
	require.NoError(t, err)
	defer func() { _ = pub.Close() }()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("personnel.field_definition.>", ch)
	require.NoError(t, err)
	defer sub.Unsubscribe() //nolint:errcheck
	require.NoError(t, nc.Flush())

	event := FieldDefinitionChanged{FieldName: "linkedin_url", FieldType: "URL", IsActive: true, Actor: "admin"}
	require.NoError(t, pub.Publish(context.Background(), TopicFieldDefinitionCreated, event))

	select {
	case msg := <-ch:
		assert.Equal(t, "personnel.field_definition.created", msg.Subject)
		var got FieldDefinitionChanged
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNATSPublisher_Subject(t *testing.T) {
	assert.Equal(t, "employee.created", (&NATSPublisher{}).Subject(TopicEmployeeCreated))
	assert.Equal(t, "hr.employee.created", (&NATSPublisher{prefix: "hr"}).Subject(TopicEmployeeCreated))
}

func TestNewNATSPublisher_BadURL(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "x", nats.MaxReconnects(0), nats.Timeout(200*time.Millisecond))
	assert.Error(t, err)
}
