package commandlike

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	raw  string
	sent []string
}

func (m *message) Kind() command.Kind           { return command.KindPrefix }
func (m *message) Session() *discordgo.Session  { return nil }
func (m *message) Host() command.Host           { return nil }
func (m *message) GuildID() string              { return "g" }
func (m *message) ChannelID() string            { return "c" }
func (m *message) Author() *discordgo.User      { return &discordgo.User{ID: "u"} }
func (m *message) Member() *discordgo.Member    { return nil }
func (m *message) InvokedWith() string          { return "" }
func (m *message) Arguments() command.Arguments { return command.Arguments{Raw: m.raw} }
func (m *message) Defer(bool) error             { return nil }
func (m *message) Send(msg *discordgo.MessageSend, _ bool) (*discordgo.Message, error) {
	m.sent = append(m.sent, msg.Content)
	return &discordgo.Message{}, nil
}

func run(t *testing.T, d *command.Definition, raw string) (*message, error) {
	t.Helper()
	m := &message{raw: raw}
	return m, d.Run(context.Background(), &cmd.Invocation{Data: m})
}

var errDenied = errors.New("denied")

type echo struct{ Base }

func (echo) Implements() command.Kind { return command.KindPrefix | command.KindSlash }
func (echo) Name() string             { return "echo" }
func (echo) Description() string      { return "Repeats the given text" }
func (echo) Aliases() []string        { return []string{"say"} }
func (echo) Hidden() bool             { return true }
func (echo) Options() []*command.Option {
	return []*command.Option{
		Opt("times", "Repetitions", Type(discordgo.ApplicationCommandOptionInteger), Default(int64(1))),
		Opt("text", "Text to repeat", ConsumeRest()),
	}
}
func (echo) Callback(c *command.Context) error {
	return c.Respond(strings.Repeat(c.Options.String("text"), int(c.Options.Int("times"))))
}

type group struct{ Base }

func (group) Implements() command.Kind { return command.KindPrefix }
func (group) Name() string             { return "admin" }
func (group) Description() string      { return "Admin commands" }
func (group) Checks() []command.Check {
	return []command.Check{func(*command.Context) error { return errDenied }}
}

type inherits struct{ Base }

func (inherits) Implements() command.Kind { return command.KindPrefix }
func (inherits) Name() string             { return "ban" }
func (inherits) Description() string      { return "Bans" }
func (inherits) InheritChecks() bool      { return true }
func (inherits) Callback(c *command.Context) error {
	return c.Respond("banned")
}

type standalone struct{ Base }

func (standalone) Implements() command.Kind { return command.KindPrefix }
func (standalone) Name() string             { return "kick" }
func (standalone) Description() string      { return "Kicks" }
func (standalone) Callback(c *command.Context) error {
	return c.Respond("kicked")
}

func TestOpt(t *testing.T) {
	tests := []struct {
		name         string
		opt          *command.Option
		wantRequired bool
		wantDefault  any
	}{
		{"no default is required", Opt("a", "d"), true, nil},
		{"default makes optional", Opt("a", "d", Default("x")), false, "x"},
		{"nil default still optional", Opt("a", "d", Default(nil)), false, nil},
		{"explicitly optional", Opt("a", "d", Required(false)), false, nil},
		{"explicitly required with default", Opt("a", "d", Default(3), Required(true)), true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRequired, tt.opt.Required)
			assert.Equal(t, tt.wantDefault, tt.opt.Default)
			assert.Equal(t, discordgo.ApplicationCommandOptionString, tt.opt.Type)
		})
	}
}

func TestOptSettings(t *testing.T) {
	o := Option("n", "d", Type(discordgo.ApplicationCommandOptionNumber), Range(1, 5), Choices(1.0, 2.5))
	assert.Equal(t, discordgo.ApplicationCommandOptionNumber, o.Type)
	require.NotNil(t, o.MinValue)
	assert.Equal(t, 1.0, *o.MinValue)
	assert.Equal(t, 5.0, o.MaxValue)
	require.Len(t, o.Choices, 2)
	assert.Equal(t, "2.5", o.Choices[1].Name)

	ch := Opt("c", "d", Type(discordgo.ApplicationCommandOptionChannel), ChannelTypes(discordgo.ChannelTypeGuildText))
	assert.Equal(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildText}, ch.ChannelTypes)
}

func TestBuildProperties(t *testing.T) {
	d, err := New(echo{}).Build()
	require.NoError(t, err)

	assert.Equal(t, "echo", d.Name())
	assert.Equal(t, command.KindPrefix|command.KindSlash, d.Kinds())
	assert.Equal(t, []string{"say"}, d.Aliases())
	assert.True(t, d.Hidden())
	require.Len(t, d.Options(), 2)

	app := d.SlashDefinition()
	require.NotNil(t, app)
	assert.Equal(t, "text", app.Options[0].Name)
	assert.Equal(t, "times", app.Options[1].Name)
}

func TestBuildRunsCallback(t *testing.T) {
	d := New(echo{}).MustBuild()
	m, err := run(t, d, "2 ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"abab"}, m.sent)
}

func TestChildrenAndInheritedChecks(t *testing.T) {
	d := New(group{}).Child(inherits{}, standalone{}).MustBuild()
	require.Len(t, d.Children(), 2)
	assert.Equal(t, "admin ban", d.Child("ban").QualifiedName())

	_, err := run(t, d, "ban")
	assert.ErrorIs(t, err, errDenied)

	m, err := run(t, d, "kick")
	require.NoError(t, err)
	assert.Equal(t, []string{"kicked"}, m.sent)
}

func TestBuildersAreIndependent(t *testing.T) {
	a := New(group{}).Child(standalone{}).MustBuild()
	b := New(group{}).MustBuild()
	assert.Len(t, a.Children(), 1)
	assert.Empty(t, b.Children())
}

func TestOnErrorAndCheckExempt(t *testing.T) {
	var handled error
	d := New(group{}).
		Nest(New(inherits{}).CheckExempt(func(*command.Context) bool { return true })).
		OnError(func(_ *command.Context, err error) bool {
			handled = err
			return true
		}).
		MustBuild()

	_, err := run(t, d, "")
	require.NoError(t, err)
	assert.ErrorIs(t, handled, errDenied)

	m, err := run(t, d, "ban")
	require.NoError(t, err)
	assert.Equal(t, []string{"banned"}, m.sent)
}

func TestHelpGetter(t *testing.T) {
	d := New(standalone{}).HelpGetter(func(_ *command.Context, d *command.Definition) string {
		return "help for " + d.Name()
	}).MustBuild()
	assert.Equal(t, "help for kick", d.Help(nil))
}

func TestBuildErrors(t *testing.T) {
	_, err := New(nil).Build()
	assert.Error(t, err)

	_, err = New(group{}).Child(standalone{}, standalone{}).Build()
	assert.Error(t, err)
}
