package storage

import "fmt"

// GlobalScope is the hash scope for global application commands.
const GlobalScope = "global"

// CommandHashes returns the command name -> definition hash map last synced
// for scope (a guild ID or GlobalScope). It is never nil.
func (s *Storage) CommandHashes(scope string) (map[string]string, error) {
	hashes := map[string]string{}
	if _, err := s.ds.Get(hashKeyPrefix+scope, &hashes); err != nil {
		return nil, fmt.Errorf("command hashes %s: %w", scope, err)
	}
	if hashes == nil {
		hashes = map[string]string{}
	}
	return hashes, nil
}

// SetCommandHashes replaces the stored hashes for scope.
func (s *Storage) SetCommandHashes(scope string, hashes map[string]string) error {
	return s.ds.Put(hashKeyPrefix+scope, hashes)
}

// ClearCommandHashes forgets scope so the next sync re-registers everything.
func (s *Storage) ClearCommandHashes(scope string) {
	s.ds.Delete(hashKeyPrefix + scope)
}
