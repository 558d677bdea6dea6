package storage

import (
	"fmt"
	"time"

	"github.com/keshon/filament/internal/datastore"
)

// CommandHistoryLimit is how many history entries are kept per guild.
const CommandHistoryLimit = 20

const (
	guildKeyPrefix = "guild:"
	hashKeyPrefix  = "commands:"
)

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Kind        string    `json:"kind"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithStore wraps an already opened datastore.
func NewWithStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) guildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildKeyPrefix+guildID, &record); err != nil {
		return nil, fmt.Errorf("guild %s: %w", guildID, err)
	}
	return &record, nil
}

// AppendCommandToHistory records an invocation, keeping the latest
// CommandHistoryLimit entries per guild.
func (s *Storage) AppendCommandToHistory(guildID string, rec CommandHistoryRecord) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, rec)
	if n := len(record.CommandsHistoryList); n > CommandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[n-CommandHistoryLimit:]
	}
	return s.ds.Put(guildKeyPrefix+guildID, record)
}

// FetchCommandHistory returns the guild's history, oldest first.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
