// Package content serves the static story catalog: character
// profiles shipped as JSON documents compiled into the binary, the
// location gazetteer, and the mapping from characters to the
// narrative scenes they appear in.  Nothing here touches the
// database; scene prose lives in MySQL behind the scene repository.
package content

import (
    "embed"
    "encoding/json"
    "fmt"
    "sort"
    "strings"
    "sync"
)

//go:embed characters/*.json
var characterFS embed.FS

// Character is one profile from the character catalog.
type Character struct {
    ID          string `json:"id"`
    Name        string `json:"name"`
    Role        string `json:"role"` // protagonist | supporting | antagonist | other
    Origin      string `json:"origin,omitempty"`
    Description string `json:"description,omitempty"`
    ImageURL    string `json:"imageUrl,omitempty"`
    Status      string `json:"status,omitempty"`
}

// characterDoc matches the on-disk shape: each file wraps its
// profile in a "character" envelope.
type characterDoc struct {
    Character Character `json:"character"`
}

var (
    loadOnce   sync.Once
    loadErr    error
    characters []Character
    byID       map[string]Character
)

func load() {
    entries, err := characterFS.ReadDir("characters")
    if err != nil {
        loadErr = err
        return
    }
    byID = make(map[string]Character, len(entries))
    for _, e := range entries {
        if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
            continue
        }
        raw, err := characterFS.ReadFile("characters/" + e.Name())
        if err != nil {
            loadErr = err
            return
        }
        var doc characterDoc
        if err := json.Unmarshal(raw, &doc); err != nil {
            loadErr = fmt.Errorf("characters/%s: %w", e.Name(), err)
            return
        }
        if doc.Character.ID == "" {
            loadErr = fmt.Errorf("characters/%s: missing character id", e.Name())
            return
        }
        characters = append(characters, doc.Character)
        byID[doc.Character.ID] = doc.Character
    }
    // Stable ordering regardless of directory listing order.
    sort.Slice(characters, func(i, j int) bool { return characters[i].ID < characters[j].ID })
}

// AllCharacters returns every character profile in id order.
func AllCharacters() ([]Character, error) {
    loadOnce.Do(load)
    return characters, loadErr
}

// CharacterByID looks up one profile.  The second return is false
// when the id is unknown.
func CharacterByID(id string) (Character, bool) {
    loadOnce.Do(load)
    if loadErr != nil {
        return Character{}, false
    }
    ch, ok := byID[strings.ToLower(id)]
    return ch, ok
}
