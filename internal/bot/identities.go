package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Identity is how a CPU opponent presents itself.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Voice       string `json:"voice"` // "girl", "boy", "robot"
	Level       string `json:"level"`
}

// DefaultIdentity is used when no identities file is available.
var DefaultIdentity = Identity{
	ID:          "cpu-girl",
	DisplayName: "Aimi",
	Voice:       "girl",
	Level:       string(LevelUniform),
}

var (
	identities []Identity
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads the CPU profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read cpu identities: %w", err)
			return
		}

		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal cpu identities: %w", err)
			return
		}
		for _, identity := range loaded {
			if identity.ID != "" {
				identities = append(identities, identity)
			}
		}
	})
	return loadErr
}

// GetIdentity returns an identity by index (mod pool size).
func GetIdentity(index int) Identity {
	if len(identities) == 0 {
		return DefaultIdentity
	}
	if index < 0 {
		index = -index
	}
	return identities[index%len(identities)]
}

// IdentityCount reports how many identities were loaded.
func IdentityCount() int {
	return len(identities)
}
