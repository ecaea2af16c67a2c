package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"sigil/internal/domain"
)

func encodeUsers(users map[string]domain.Credential) ([]byte, error) {
	for name, c := range users {
		if err := checkRecord(name, c); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	if users == nil {
		users = map[string]domain.Credential{}
	}
	return json.MarshalIndent(users, "", "  ")
}

// decodeUsers parses the users slot. A nil slot is an empty collection.
func decodeUsers(b []byte) (map[string]domain.Credential, error) {
	users := make(map[string]domain.Credential)
	if b == nil {
		return users, nil
	}
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("%w: users: %v", domain.ErrCorruptStore, err)
	}
	if users == nil {
		// literal null
		return nil, fmt.Errorf("%w: users: not an object", domain.ErrCorruptStore)
	}
	for name, c := range users {
		if err := checkRecord(name, c); err != nil {
			return nil, fmt.Errorf("%w: users: %v", domain.ErrCorruptStore, err)
		}
	}
	return users, nil
}

func encodeCredential(c domain.Credential) ([]byte, error) {
	if err := checkRecord(c.Name, c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return json.MarshalIndent(c, "", "  ")
}

// decodeCredential parses the currentUser slot.
func decodeCredential(b []byte) (domain.Credential, bool, error) {
	if b == nil {
		return domain.Credential{}, false, nil
	}
	var c domain.Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return domain.Credential{}, false, fmt.Errorf("%w: currentUser: %v", domain.ErrCorruptStore, err)
	}
	if err := checkRecord(c.Name, c); err != nil {
		return domain.Credential{}, false, fmt.Errorf("%w: currentUser: %v", domain.ErrCorruptStore, err)
	}
	return c, true, nil
}

// checkRecord enforces the record schema. Email may be empty.
func checkRecord(key string, c domain.Credential) error {
	switch {
	case c.ID == "":
		return errors.New("record without id")
	case c.Name == "":
		return errors.New("record without name")
	case c.Name != key:
		return fmt.Errorf("record %q stored under %q", c.Name, key)
	case c.Signature == "":
		return fmt.Errorf("record %q without signature", c.Name)
	case c.PublicKey == "" || c.PrivateKey == "":
		return fmt.Errorf("record %q without key material", c.Name)
	}
	return nil
}

func cloneUsers(users map[string]domain.Credential) map[string]domain.Credential {
	out := make(map[string]domain.Credential, len(users))
	maps.Copy(out, users)
	return out
}
