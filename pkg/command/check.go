package command

import (
	"errors"
	"fmt"
)

var (
	ErrCheckFailure = errors.New("check failed")
	ErrNotOwner     = fmt.Errorf("%w: only the bot owner may use this command", ErrCheckFailure)
	ErrGuildOnly    = fmt.Errorf("%w: this command can only be used in a server", ErrCheckFailure)

	ErrMissingOption = errors.New("missing required argument")
	ErrBadOption     = errors.New("invalid argument")
)

// Check runs before a command's callback. A non-nil error stops the invocation.
type Check func(c *Context) error

// OwnerOnly passes only for users the host considers bot owners.
func OwnerOnly(c *Context) error {
	author := c.Author()
	if author == nil || c.Host() == nil || !c.Host().IsOwner(author.ID) {
		return ErrNotOwner
	}
	return nil
}

// GuildOnly rejects invocations from direct messages.
func GuildOnly(c *Context) error {
	if c.GuildID() == "" {
		return ErrGuildOnly
	}
	return nil
}
