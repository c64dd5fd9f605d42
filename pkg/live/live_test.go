package live

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/resusage/pkg/resource"
	"github.com/dkoosis/resusage/pkg/tracker"
)

func send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestModel_CountsEvents(t *testing.T) {
	var m tea.Model = NewModel("go test -json ./...")
	m = send(m,
		tea.WindowSizeMsg{Width: 100, Height: 20},
		eventMsg{Type: tracker.EventTestStart, Test: "TestLoad"},
		eventMsg{Type: tracker.EventRecord, Test: "TestLoad", Record: resource.Record{Kind: resource.KindDBTable, Name: "orders"}},
		eventMsg{Type: tracker.EventRejected, Test: "TestLoad", Keyword: resource.KeywordUseDBTable, Err: errors.New("blank")},
	)

	model := m.(Model)
	assert.Equal(t, 1, model.tests)
	assert.Equal(t, 1, model.records)
	assert.Equal(t, 1, model.rejected)
	assert.Equal(t, "TestLoad", model.current)

	view := model.View()
	assert.Contains(t, view, "tests 1 · records 1 · rejected 1")
	assert.Contains(t, view, "TestLoad")
	assert.Contains(t, view, "DB_TABLE:orders")
}

func TestModel_TestEndClearsCurrent(t *testing.T) {
	var m tea.Model = NewModel("run")
	m = send(m,
		eventMsg{Type: tracker.EventTestStart, Test: "TestA"},
		eventMsg{Type: tracker.EventTestEnd, Test: "TestA"},
	)
	assert.Equal(t, "", m.(Model).current)
	assert.NotContains(t, m.View(), "running")
}

func TestModel_DoneQuits(t *testing.T) {
	var m tea.Model = NewModel("run")
	m, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.(Model).done)
	assert.Contains(t, m.View(), "✓ run")
}

func TestModel_LogIsCapped(t *testing.T) {
	m := NewModel("run")
	for i := 0; i < maxLines+50; i++ {
		m.apply(tracker.Event{Type: tracker.EventRecord, Record: resource.Record{Kind: resource.KindDBTable, Name: "t"}})
	}
	assert.Len(t, m.lines, maxLines)
	assert.Equal(t, maxLines+50, m.records)
}

func TestModel_IgnoresKeys(t *testing.T) {
	m := NewModel("run")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "interrupts end the view through its context, not key input")
	assert.False(t, next.(Model).done)
}

func TestView_StopAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	v := Start(ctx, &out, "run")
	v.Observer()(tracker.Event{Type: tracker.EventTestStart, Test: "TestA"})
	cancel()
	assert.NoError(t, v.Stop())
}
