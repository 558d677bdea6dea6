package shorthand

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/filament/pkg/cmd"
	"github.com/keshon/filament/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct{ raw string }

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
func (m *message) Send(*discordgo.MessageSend, bool) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

func noop(*command.Context) error { return nil }

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		ctor func(string, string, command.Callback, ...Setting) (*command.Definition, error)
		want command.Kind
	}{
		{"prefix", PrefixCommand, command.KindPrefix},
		{"slash", SlashCommand, command.KindSlash},
		{"both", PrefixSlashCommand, command.KindPrefix | command.KindSlash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.ctor("foo", "test command", noop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Kinds())
			assert.Equal(t, tt.want.Has(command.KindSlash), d.SlashDefinition() != nil)
			assert.Equal(t, tt.want.Has(command.KindPrefix), d.PrefixEnabled())
		})
	}
}

func TestSettings(t *testing.T) {
	child := Must(PrefixCommand("bar", "child", noop))
	d := Must(PrefixCommand("foo", "test command", noop,
		Aliases("f"),
		Guilds("1"),
		Hidden(),
		Category("Utility"),
		Children(child),
		WithOptions(&command.Option{Name: "x", Type: discordgo.ApplicationCommandOptionString}),
	))
	assert.Equal(t, []string{"f"}, d.Aliases())
	assert.Equal(t, []string{"1"}, d.Guilds())
	assert.True(t, d.Hidden())
	assert.Equal(t, "Utility", d.Category())
	assert.Same(t, d, d.Child("bar").Parent())
	require.Len(t, d.Options(), 1)
}

func TestInvalidSlashName(t *testing.T) {
	_, err := SlashCommand("Foo Bar", "test command", noop)
	assert.Error(t, err)
	assert.Panics(t, func() { Must(SlashCommand("", "x", noop)) })
}

type echoArgs struct {
	Text  string          `json:"text"`
	Times int64           `json:"times"`
	Loud  bool            `json:"loud"`
	User  *discordgo.User `json:"user"`
}

func TestPassOptions(t *testing.T) {
	var got echoArgs
	d := Must(PrefixCommand("echo", "Repeats the given text",
		PassOptions(func(_ *command.Context, a echoArgs) error {
			got = a
			return nil
		}),
		WithOptions(
			&command.Option{Name: "times", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
			&command.Option{Name: "loud", Type: discordgo.ApplicationCommandOptionBoolean, Default: false},
			&command.Option{Name: "user", Type: discordgo.ApplicationCommandOptionUser},
			&command.Option{Name: "text", Type: discordgo.ApplicationCommandOptionString, Required: true, ConsumeRest: true},
		),
	))

	err := d.Run(context.Background(), &cmd.Invocation{Data: &message{raw: "3 yes <@42> hello  there"}})
	require.NoError(t, err)
	assert.Equal(t, "hello  there", got.Text)
	assert.Equal(t, int64(3), got.Times)
	assert.True(t, got.Loud)
	require.NotNil(t, got.User)
	assert.Equal(t, "42", got.User.ID)
}
