package paginator

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/jobmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	sent []*discordgo.MessageSend
}

func (f *fakeTarget) Send(msg *discordgo.MessageSend, _ bool) (*discordgo.Message, error) {
	f.sent = append(f.sent, msg)
	return &discordgo.Message{ID: "m1", ChannelID: "c1", Content: msg.Content}, nil
}
func (f *fakeTarget) Author() *discordgo.User     { return &discordgo.User{ID: "author"} }
func (f *fakeTarget) Session() *discordgo.Session { return nil }

func TestShowSinglePageHasNoButtons(t *testing.T) {
	m := NewManager(nil, time.Minute)
	tgt := &fakeTarget{}
	require.NoError(t, m.Show(context.Background(), tgt, []string{"only"}))

	require.Len(t, tgt.sent, 1)
	assert.Empty(t, tgt.sent[0].Components)
	assert.Empty(t, m.Active())
}

func TestShowRejectsEmpty(t *testing.T) {
	m := NewManager(nil, time.Minute)
	assert.ErrorIs(t, m.Show(context.Background(), &fakeTarget{}, nil), ErrNoPages)
}

func TestNavigateAndStop(t *testing.T) {
	jobs := jobmgr.NewManager(nil)
	m := NewManager(jobs, time.Minute)
	defer m.Close()

	tgt := &fakeTarget{}
	require.NoError(t, m.Show(context.Background(), tgt, []string{"p1", "p2", "p3"}))
	require.Len(t, tgt.sent, 1)
	require.Len(t, tgt.sent[0].Components, 1)

	active := m.Active()
	require.Len(t, active, 1)
	id := active[0]
	assert.True(t, jobs.Running(jobName(id)))

	resp, err := m.handle("author", CustomID(id, ActionNext))
	require.NoError(t, err)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "p2", resp.Data.Content)

	resp, err = m.handle("author", CustomID(id, ActionLast))
	require.NoError(t, err)
	assert.Equal(t, "p3", resp.Data.Content)

	resp, err = m.handle("someone-else", CustomID(id, ActionFirst))
	require.NoError(t, err)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	resp, err = m.handle("author", CustomID(id, ActionStop))
	require.NoError(t, err)
	assert.Equal(t, "p3", resp.Data.Content)
	assert.Empty(t, resp.Data.Components)
	assert.Empty(t, m.Active())
	assert.False(t, jobs.Running(jobName(id)))

	resp, err = m.handle("author", CustomID(id, ActionNext))
	require.NoError(t, err)
	assert.Contains(t, resp.Data.Content, "expired")
}

func TestNavigatorExpiresWhenJobStops(t *testing.T) {
	jobs := jobmgr.NewManager(nil)
	m := NewManager(jobs, time.Minute)
	require.NoError(t, m.Show(context.Background(), &fakeTarget{}, []string{"a", "b"}))
	id := m.Active()[0]

	jobs.StopAll()
	assert.Empty(t, jobs.List())
	resp, err := m.handle("author", CustomID(id, ActionNext))
	require.NoError(t, err)
	assert.Contains(t, resp.Data.Content, "expired")
}

func TestNavigatorTimesOut(t *testing.T) {
	m := NewManager(nil, 20*time.Millisecond)
	require.NoError(t, m.Show(context.Background(), &fakeTarget{}, []string{"a", "b"}))
	require.Len(t, m.Active(), 1)

	assert.Eventually(t, func() bool { return len(m.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHandleUnknownComponent(t *testing.T) {
	m := NewManager(nil, time.Minute)
	_, err := m.handle("author", "other:1:next")
	assert.ErrorIs(t, err, ErrUnknownControl)
}

func TestNavigatorButtons(t *testing.T) {
	nav := NewNavigator("x", "a", []string{"1", "2"})
	row := nav.Components(false)[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 5)

	first := row.Components[0].(discordgo.Button)
	next := row.Components[3].(discordgo.Button)
	assert.True(t, first.Disabled)
	assert.False(t, next.Disabled)
	assert.Equal(t, "nav:x:first", first.CustomID)

	nav.Apply(ActionNext)
	row = nav.Components(false)[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[4].(discordgo.Button).Disabled)

	for _, c := range nav.Components(true)[0].(discordgo.ActionsRow).Components {
		assert.True(t, c.(discordgo.Button).Disabled)
	}
}

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		in     string
		id     string
		action Action
		ok     bool
	}{
		{"nav:1a:next", "1a", ActionNext, true},
		{"nav:1a:stop", "1a", ActionStop, true},
		{"nav::next", "", "", false},
		{"nav:1a:jump", "", "", false},
		{"help:1a:next", "", "", false},
	}
	for _, tt := range tests {
		id, action, ok := ParseCustomID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.id, id, tt.in)
		assert.Equal(t, tt.action, action, tt.in)
	}
}
