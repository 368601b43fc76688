package eventhub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsExtension struct {
	hits []Event
}

func (a *analyticsExtension) TypeName() string     { return "analytics" }
func (a *analyticsExtension) FriendlyName() string  { return "Analytics" }
func (a *analyticsExtension) Version() string       { return "1.0.0" }
func (a *analyticsExtension) Metadata() Metadata    { return nil }
func (a *analyticsExtension) SharedStateName() string { return "analytics" }
func (a *analyticsExtension) OnUnregistered()       {}
func (a *analyticsExtension) ReadyForEvent(Event) bool { return true }

func (a *analyticsExtension) OnRegistered(api *ExtensionAPI) error {
	api.RegisterListener("track", "*", func(e Event) {
		a.hits = append(a.hits, e)
	})
	return nil
}

func TestNewHubDefaultConfig(t *testing.T) {
	hub, err := NewHub(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, hub)
}

func TestNewHubRejectsInvalidConfig(t *testing.T) {
	_, err := NewHub(&Config{MetricsPort: -5}, nil)
	require.Error(t, err)
}

func TestNewHubAppliesExtensionQueueCapacityHint(t *testing.T) {
	hub, err := NewHub(&Config{ExtensionQueueCapacityHint: 8}, nil)
	require.NoError(t, err)
	hub.Start()

	ext := &analyticsExtension{}
	done := make(chan error, 1)
	hub.RegisterExtension(ExtensionRegistration{
		TypeName: ext.TypeName(),
		Factory:  func() (Extension, error) { return ext, nil },
	}, func(err error) { done <- err })
	require.NoError(t, <-done)

	container := hub.GetExtensionContainer(ext.TypeName())
	require.NotNil(t, container)
}

func TestFacadeEndToEnd(t *testing.T) {
	hub, err := NewHub(nil, nil)
	require.NoError(t, err)
	hub.Start()

	ext := &analyticsExtension{}
	done := make(chan error, 1)
	hub.RegisterExtension(ExtensionRegistration{
		TypeName: ext.TypeName(),
		Factory:  func() (Extension, error) { return ext, nil },
	}, func(err error) { done <- err })
	require.NoError(t, <-done)

	hub.Dispatch(NewEvent("checkout", "track", "app", map[string]any{"amount": 42}))

	deadline := time.Now().Add(time.Second)
	for len(ext.hits) == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	assert.Len(t, ext.hits, 1)
	assert.Equal(t, "checkout", ext.hits[0].Name)
}
