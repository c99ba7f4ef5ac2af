package teams

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed premier_league.yaml
var premierLeagueYAML []byte

// similarityThreshold is the minimum Levenshtein similarity accepted by Match.
const similarityThreshold = 0.75

var premierLeague = mustLoad(premierLeagueYAML)

// PremierLeague returns the directory of the 2024/25 Premier League clubs.
func PremierLeague() *Directory {
	return premierLeague
}

// Directory is immutable once built and safe for concurrent use.
type Directory struct {
	teams   []models.Team
	byID    map[string]int
	byName  map[string]int
	byAlias map[string]int
	keys    []matchKey
}

type matchKey struct {
	folded string
	index  int
}

func mustLoad(data []byte) *Directory {
	d, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("loading embedded team directory: %v", err))
	}
	return d
}

// Load builds a directory from a YAML list of teams.
func Load(data []byte) (*Directory, error) {
	var list []models.Team
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}
	return New(list)
}

func New(list []models.Team) (*Directory, error) {
	d := &Directory{
		teams:   make([]models.Team, 0, len(list)),
		byID:    make(map[string]int, len(list)),
		byName:  make(map[string]int, len(list)),
		byAlias: make(map[string]int),
	}

	for _, t := range list {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("team %q: id and name are required", t.ID)
		}
		if _, ok := d.byID[t.ID]; ok {
			return nil, fmt.Errorf("duplicate team id %q", t.ID)
		}
		name := fold(t.Name)
		if _, ok := d.byName[name]; ok {
			return nil, fmt.Errorf("duplicate team name %q", t.Name)
		}

		i := len(d.teams)
		t.Aliases = append([]string(nil), t.Aliases...)
		d.teams = append(d.teams, t)
		d.byID[t.ID] = i
		d.byName[name] = i
		d.keys = append(d.keys, matchKey{folded: name, index: i})

		for _, a := range t.Aliases {
			alias := fold(a)
			// the first team to claim an alias keeps it
			if _, ok := d.byAlias[alias]; ok {
				continue
			}
			d.byAlias[alias] = i
			d.keys = append(d.keys, matchKey{folded: alias, index: i})
		}
	}

	return d, nil
}

// Find looks a team up by exact id, then by canonical name, then by alias.
// Name and alias comparisons ignore case.
func (d *Directory) Find(identifierOrName string) (models.Team, bool) {
	if i, ok := d.byID[identifierOrName]; ok {
		return d.team(i), true
	}

	key := fold(identifierOrName)
	if key == "" {
		return models.Team{}, false
	}
	if i, ok := d.byName[key]; ok {
		return d.team(i), true
	}
	if i, ok := d.byAlias[key]; ok {
		return d.team(i), true
	}
	return models.Team{}, false
}

// Match normalizes free text from external sources such as "Arsenal FC (ENG)"
// or "Totenham". It falls back from Find to the longest known name contained in
// the text and finally to the closest name by edit distance.
func (d *Directory) Match(text string) (models.Team, bool) {
	if t, ok := d.Find(text); ok {
		return t, true
	}

	input := fold(text)
	if input == "" {
		return models.Team{}, false
	}

	best, bestLen := -1, 0
	for _, k := range d.keys {
		if len(k.folded) > bestLen && containsWord(input, k.folded) {
			best, bestLen = k.index, len(k.folded)
		}
	}
	if best >= 0 {
		return d.team(best), true
	}

	bestScore := similarityThreshold
	for _, k := range d.keys {
		distance := fuzzy.LevenshteinDistance(input, k.folded)
		maxLen := float64(max(len(input), len(k.folded)))
		similarity := 1 - float64(distance)/maxLen
		if similarity >= bestScore {
			best, bestScore = k.index, similarity
		}
	}
	if best >= 0 {
		return d.team(best), true
	}

	return models.Team{}, false
}

// All returns the teams in directory order.
func (d *Directory) All() []models.Team {
	out := make([]models.Team, len(d.teams))
	for i := range d.teams {
		out[i] = d.team(i)
	}
	return out
}

// Name returns the display name for id, or id itself when unknown.
func (d *Directory) Name(id string) string {
	if i, ok := d.byID[id]; ok {
		return d.teams[i].Name
	}
	return id
}

func (d *Directory) team(i int) models.Team {
	t := d.teams[i]
	t.Aliases = append([]string(nil), t.Aliases...)
	return t
}

func fold(s string) string {
	// a Caser is stateful, so each call gets its own
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// containsWord reports whether key appears in s on word boundaries.
func containsWord(s, key string) bool {
	for start := 0; start <= len(s)-len(key); {
		i := strings.Index(s[start:], key)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(key)
		if (i == 0 || !isWordByte(s[i-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
