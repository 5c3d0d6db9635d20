package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-geo-bearing/pkg/geocode"
	"github.com/kass/go-geo-bearing/pkg/locate"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPlanner() *planner.Planner {
	geocoder := geocode.GeocoderFunc(func(ctx context.Context, q string) (models.GeoPoint, error) {
		if strings.EqualFold(q, "brooklyn") {
			return models.GeoPoint{Lat: 40.6782, Lng: -73.9442}, nil
		}
		return models.GeoPoint{}, geocode.ErrNoMatch
	})
	locator := locate.Static{Point: models.GeoPoint{Lat: 51.5074, Lng: -0.1278}}
	return planner.New(planner.DefaultOptions(), geocoder, locator, zap.NewNop())
}

// drain runs cmd and any batched commands until it finds the view result
func drain(t *testing.T, cmd tea.Cmd) viewMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case viewMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if v, ok := c().(viewMsg); ok {
				return v
			}
		}
	}
	t.Fatal("no view message produced")
	return viewMsg{}
}

func send(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestEnterBuildsAddressView(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)
	m.input.SetValue("Brooklyn")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.busy)
	assert.Contains(t, m.View(), "Working")

	m, _ = send(t, m, drain(t, cmd))
	assert.False(t, m.busy)
	require.NoError(t, m.err)
	require.NotNil(t, m.view)
	assert.InDelta(t, 54.09, m.view.Bearing, 0.05)
	assert.Contains(t, m.View(), "Bearing to Jerusalem")
}

func TestEnterWithCoordinates(t *testing.T) {
	m := initialModel(testPlanner(), models.Rhumb, time.Second, false)
	m.input.SetValue("40.6782, -73.9442")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, drain(t, cmd))
	require.NotNil(t, m.view)
	assert.Equal(t, models.Rhumb, m.view.Mode)
	assert.InDelta(t, 95.78, m.view.Bearing, 0.05)
}

func TestTabTogglesModeAndRebuilds(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.Rhumb, m.mode)
	assert.Nil(t, cmd)

	m.input.SetValue("Brooklyn")
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, drain(t, cmd))
	require.NotNil(t, m.view)
	assert.Equal(t, models.Rhumb, m.view.Mode)

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.GreatCircle, m.mode)
	m, _ = send(t, m, drain(t, cmd))
	assert.Equal(t, models.GreatCircle, m.view.Mode)
}

func TestCurrentLocationKeepsOrigin(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m, _ = send(t, m, drain(t, cmd))
	require.NotNil(t, m.view)
	assert.Equal(t, planner.CurrentLocationLabel, m.view.Label)

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, drain(t, cmd))
	require.NotNil(t, m.view)
	assert.Equal(t, planner.CurrentLocationLabel, m.view.Label)
	assert.Equal(t, models.Rhumb, m.view.Mode)
	assert.InDelta(t, 51.5074, m.view.Origin.Lat, 1e-9)
}

func TestErrorsAreShown(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)
	m.input.SetValue("Atlantis")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, drain(t, cmd))
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "no match")

	m.input.SetValue("95, 10")
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, drain(t, cmd))
	assert.Contains(t, m.View(), "Invalid input")
}

func TestEscQuits(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRunBatch(t *testing.T) {
	m := initialModel(testPlanner(), models.GreatCircle, time.Second, false)
	in := strings.NewReader("Brooklyn\n\n31.0,35.0\nAtlantis\n")

	var out bytes.Buffer
	require.NoError(t, runBatch(in, &out, m))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Brooklyn: 54.")
	assert.Contains(t, lines[1], "31.0,35.0:")
	assert.Contains(t, lines[2], "Atlantis: Error:")
}
