package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/tripcost/core/events"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
`

func startMosquitto(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available")
	}
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(mosquittoConf), 0644))

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("mosquitto container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestStatePublisherMosquitto(t *testing.T) {
	broker := startMosquitto(t)

	received := make(chan []byte, 4)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	require.Eventually(t, func() bool {
		tok := sub.Connect()
		return tok.Wait() && tok.Error() == nil
	}, 5*time.Second, 100*time.Millisecond)
	defer sub.Disconnect(100)
	tok := sub.Subscribe("it/+/state", 1, func(_ paho.Client, m paho.Message) {
		received <- m.Payload()
	})
	require.True(t, tok.WaitTimeout(2*time.Second))
	require.NoError(t, tok.Error())

	p, err := NewStatePublisher(Config{Enabled: true, Broker: broker, ClientID: "pub", TopicPrefix: "it", QoS: 1})
	require.NoError(t, err)
	defer p.Disconnect()

	require.NoError(t, p.Publish(events.StateEvent{SessionID: "s1", Phase: "failed", Message: "Model unavailable"}))

	select {
	case payload := <-received:
		var ev events.StateEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "failed", ev.Phase)
		assert.Equal(t, "Model unavailable", ev.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("state event not received")
	}
}
