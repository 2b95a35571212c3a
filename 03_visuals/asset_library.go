package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// AssetLibrary picks backgrounds from a local folder of tagged images
// instead of generating them. An image is not reused until every image
// in the library has been shown.
type AssetLibrary struct {
	dir  string
	tags map[string][]string // filename → tags
	rng  *rand.Rand

	mu   sync.Mutex
	used map[string]bool
}

// NewAssetLibrary loads tags.json. Keys starting with '_' are ignored so the
// file can carry instructions for whoever maintains it.
func NewAssetLibrary(dir, tagsFile string, rng *rand.Rand) (*AssetLibrary, error) {
	tags, err := loadTagsJSON(tagsFile)
	if err != nil {
		return nil, fmt.Errorf("load background tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("no backgrounds listed in %s", tagsFile)
	}
	return &AssetLibrary{dir: dir, tags: tags, rng: rng, used: make(map[string]bool)}, nil
}

// Generate returns the library image that best matches the prompt's words.
// width and height are ignored; the caller scales the result.
func (a *AssetLibrary) Generate(ctx context.Context, prompt string, width, height int) (image.Image, error) {
	file, score := a.pick(prompt)
	log.Printf("[visuals] Library: picked %q (score: %d)", file, score)

	f, err := os.Open(filepath.Join(a.dir, file))
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background %s: %w", file, err)
	}
	return img, nil
}

type scored struct {
	file  string
	score int
}

func (a *AssetLibrary) pick(prompt string) (string, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.used) >= len(a.tags) {
		a.used = make(map[string]bool)
	}

	words := strings.Fields(strings.ToLower(prompt))
	var candidates []scored
	for file, t := range a.tags {
		if a.used[file] {
			continue
		}
		candidates = append(candidates, scored{file, matchScore(words, t)})
	}

	// Sort by score descending, then pick from top 3 randomly (prevents always same image)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].file < candidates[j].file
	})
	topN := 3
	if len(candidates) < topN {
		topN = len(candidates)
	}
	choice := candidates[a.rng.Intn(topN)]

	a.used[choice.file] = true
	return choice.file, choice.score
}

// matchScore counts the image tags that appear among the prompt words
func matchScore(words, imageTags []string) int {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.Trim(w, ",.")] = true
	}
	score := 0
	for _, t := range imageTags {
		if set[strings.ToLower(t)] {
			score += 10
		}
	}
	return score
}

func loadTagsJSON(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for k, v := range raw {
		if strings.HasPrefix(k, "_") {
			continue
		}
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			continue
		}
		result[k] = tags
	}
	return result, nil
}
