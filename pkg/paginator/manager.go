package paginator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/command"
	"github.com/keshon/filament/pkg/jobmgr"
)

// DefaultTimeout is how long a navigator stays interactive without input.
const DefaultTimeout = 2 * time.Minute

var (
	ErrNoPages        = errors.New("paginator: nothing to show")
	ErrUnknownControl = errors.New("paginator: unknown navigator component")
)

// Target is where a navigator is first sent. *command.Context satisfies it.
type Target interface {
	Send(msg *discordgo.MessageSend, ephemeral bool) (*discordgo.Message, error)
	Author() *discordgo.User
	Session() *discordgo.Session
}

// Editor edits messages after their interaction has gone stale.
type Editor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Manager owns the live navigators and routes their button presses. Each live
// navigator is tracked as a job that ends on stop, timeout or shutdown.
type Manager struct {
	jobs    *jobmgr.Manager
	timeout time.Duration
	seq     atomic.Uint64

	mu   sync.Mutex
	navs map[string]*tracked
}

type tracked struct {
	nav     *Navigator
	touched chan struct{}
}

// NewManager returns a manager that tracks navigators in jobs. A timeout of
// zero uses DefaultTimeout.
func NewManager(jobs *jobmgr.Manager, timeout time.Duration) *Manager {
	if jobs == nil {
		jobs = jobmgr.NewManager(nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{jobs: jobs, timeout: timeout, navs: make(map[string]*tracked)}
}

func jobName(id string) string { return CustomIDPrefix + ":" + id }

// Show sends the first page. Multi-page output gets navigation buttons that
// stay live until stopped or idle for the manager's timeout.
func (m *Manager) Show(ctx context.Context, t Target, pages []string) error {
	if len(pages) == 0 {
		return ErrNoPages
	}
	if len(pages) == 1 {
		_, err := t.Send(&discordgo.MessageSend{Content: pages[0]}, false)
		return err
	}

	author := ""
	if u := t.Author(); u != nil {
		author = u.ID
	}
	nav := NewNavigator(strconv.FormatUint(m.seq.Add(1), 36), author, pages)
	msg, err := t.Send(&discordgo.MessageSend{Content: pages[0], Components: nav.Components(false)}, false)
	if err != nil {
		return err
	}
	if msg != nil {
		nav.ChannelID, nav.MessageID = msg.ChannelID, msg.ID
	}

	var editor Editor
	if s := t.Session(); s != nil {
		editor = s
	}
	return m.track(ctx, nav, editor)
}

func (m *Manager) track(ctx context.Context, nav *Navigator, editor Editor) error {
	tr := &tracked{nav: nav, touched: make(chan struct{}, 1)}
	m.mu.Lock()
	m.navs[nav.ID] = tr
	m.mu.Unlock()

	err := m.jobs.StartAsync(ctx, jobName(nav.ID), func(ctx context.Context) error {
		return m.watch(ctx, tr, editor)
	})
	if err != nil {
		m.remove(nav.ID)
	}
	return err
}

func (m *Manager) watch(ctx context.Context, tr *tracked, editor Editor) error {
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	for {
		select {
		case <-tr.touched:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(m.timeout)
		case <-timer.C:
			m.remove(tr.nav.ID)
			return m.expire(tr.nav, editor)
		case <-ctx.Done():
			m.remove(tr.nav.ID)
			return nil
		}
	}
}

// expire greys out the buttons of a navigator that timed out.
func (m *Manager) expire(nav *Navigator, editor Editor) error {
	if editor == nil || nav.MessageID == "" {
		return nil
	}
	comps := nav.Components(true)
	_, err := editor.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         nav.MessageID,
		Channel:    nav.ChannelID,
		Components: &comps,
	})
	if err != nil {
		return fmt.Errorf("disable navigator %s: %w", nav.ID, err)
	}
	return nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.navs, id)
	m.mu.Unlock()
}

func (m *Manager) get(id string) *tracked {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.navs[id]
}

// Active returns the IDs of live navigators.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.navs))
	for id := range m.navs {
		out = append(out, id)
	}
	return out
}

// Close stops every live navigator.
func (m *Manager) Close() {
	for _, id := range m.Active() {
		_ = m.jobs.Stop(jobName(id))
		m.remove(id)
	}
}

// Component answers a navigator button press.
func (m *Manager) Component(c *command.ComponentContext) error {
	i := c.Event
	userID := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	} else if i.User != nil {
		userID = i.User.ID
	}

	resp, err := m.handle(userID, i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}
	return c.Session.InteractionRespond(i.Interaction, resp)
}

func (m *Manager) handle(userID, customID string) (*discordgo.InteractionResponse, error) {
	id, action, ok := ParseCustomID(customID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, customID)
	}

	tr := m.get(id)
	if tr == nil || !m.jobs.Running(jobName(id)) {
		return ephemeral("This navigator has expired."), nil
	}
	if tr.nav.AuthorID != "" && userID != tr.nav.AuthorID {
		return ephemeral("Only the person who ran the command can use these buttons."), nil
	}

	if action == ActionStop {
		_ = m.jobs.Stop(jobName(id))
		m.remove(id)
		_, page := tr.nav.Current()
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    page,
				Components: []discordgo.MessageComponent{},
			},
		}, nil
	}

	page := tr.nav.Apply(action)
	select {
	case tr.touched <- struct{}{}:
	default:
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    page,
			Components: tr.nav.Components(false),
		},
	}, nil
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}
