package command

import (
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// Option declares one command argument.
type Option struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandOptionType
	Required    bool
	// Default is used when an optional argument is omitted.
	Default      any
	Choices      []*discordgo.ApplicationCommandOptionChoice
	ChannelTypes []discordgo.ChannelType
	MinValue     *float64
	MaxValue     float64
	// ConsumeRest makes a prefix argument take the rest of the message verbatim.
	ConsumeRest bool
}

// ApplicationCommandOption converts the option to its Discord form.
func (o *Option) ApplicationCommandOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         o.Type,
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		Choices:      o.Choices,
		ChannelTypes: o.ChannelTypes,
		MinValue:     o.MinValue,
		MaxValue:     o.MaxValue,
	}
}

// requiredFirst returns the options with required ones before optional ones,
// keeping declaration order within each group. Discord rejects the other order.
func requiredFirst(opts []*Option) []*Option {
	sorted := make([]*Option, len(opts))
	copy(sorted, opts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Required && !sorted[j].Required
	})
	return sorted
}

// Options holds decoded argument values keyed by option name.
//
// Value types: string, int64, float64, bool, *discordgo.User, *discordgo.Channel,
// *discordgo.Role; mentionables and attachments are kept as their snowflake string.
type Options map[string]any

func (o Options) Has(name string) bool {
	v, ok := o[name]
	return ok && v != nil
}

func (o Options) String(name string) string {
	s, _ := o[name].(string)
	return s
}

func (o Options) Int(name string) int64 {
	switch v := o[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (o Options) Float(name string) float64 {
	switch v := o[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (o Options) Bool(name string) bool {
	b, _ := o[name].(bool)
	return b
}

func (o Options) User(name string) *discordgo.User {
	u, _ := o[name].(*discordgo.User)
	return u
}

func (o Options) Channel(name string) *discordgo.Channel {
	c, _ := o[name].(*discordgo.Channel)
	return c
}

func (o Options) Role(name string) *discordgo.Role {
	r, _ := o[name].(*discordgo.Role)
	return r
}

// OptionError reports a missing or malformed argument.
type OptionError struct {
	Option string
	Value  string
	Err    error
}

func (e *OptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("option %q: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("option %q: %q: %v", e.Option, e.Value, e.Err)
}

func (e *OptionError) Unwrap() error { return e.Err }

// decodeSlash converts interaction option values into Options, applying defaults
// for options the user left out.
func decodeSlash(s *discordgo.Session, guildID string, specs []*Option, given []*discordgo.ApplicationCommandInteractionDataOption) (Options, error) {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(given))
	for _, g := range given {
		byName[g.Name] = g
	}

	out := make(Options, len(specs))
	for _, spec := range specs {
		g, ok := byName[spec.Name]
		if !ok || g.Value == nil {
			if spec.Required {
				return nil, &OptionError{Option: spec.Name, Err: ErrMissingOption}
			}
			out[spec.Name] = spec.Default
			continue
		}
		v, err := slashValue(s, guildID, spec, g)
		if err != nil {
			return nil, &OptionError{Option: spec.Name, Value: fmt.Sprint(g.Value), Err: err}
		}
		out[spec.Name] = v
	}
	return out, nil
}

func slashValue(s *discordgo.Session, guildID string, spec *Option, g *discordgo.ApplicationCommandInteractionDataOption) (v any, err error) {
	// discordgo's typed accessors panic on a type mismatch.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadOption, r)
		}
	}()

	switch spec.Type {
	case discordgo.ApplicationCommandOptionString:
		return g.StringValue(), nil
	case discordgo.ApplicationCommandOptionInteger:
		return g.IntValue(), nil
	case discordgo.ApplicationCommandOptionNumber:
		return g.FloatValue(), nil
	case discordgo.ApplicationCommandOptionBoolean:
		return g.BoolValue(), nil
	case discordgo.ApplicationCommandOptionUser:
		return g.UserValue(s), nil
	case discordgo.ApplicationCommandOptionChannel:
		return g.ChannelValue(s), nil
	case discordgo.ApplicationCommandOptionRole:
		return g.RoleValue(s, guildID), nil
	default:
		return fmt.Sprint(g.Value), nil
	}
}
