// Package garage keeps the set of bots being designed, which one is selected,
// and a cache of their computed figures.
package garage

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
)

var (
	ErrNotFound    = errors.New("bot not found")
	ErrNoSelection = errors.New("no bot selected")
)

type cached struct {
	revision uint64
	computed bot.Computed
}

type Garage struct {
	lock sync.Mutex
	// saveLock orders saves so the file always ends up with the newest
	// snapshot.
	saveLock sync.Mutex

	bots      map[string]bot.Config
	revisions map[string]uint64
	revision  uint64
	selected  string
	cache     map[string]cached

	// Hooks for tests.
	newID   func() string
	newName func() string
}

func New() *Garage {
	return &Garage{
		bots:      map[string]bot.Config{},
		revisions: map[string]uint64{},
		cache:     map[string]cached{},
		newID:     uuid.NewString,
		newName:   RandomName,
	}
}

// put stores c and bumps its revision.  Callers hold the lock.
func (g *Garage) put(c bot.Config) {
	g.revision++
	g.bots[c.ID] = c.Clone()
	g.revisions[c.ID] = g.revision
}

// Create adds a bot with the default configuration and a random name and
// returns its ID.
func (g *Garage) Create() string {
	g.lock.Lock()
	defer g.lock.Unlock()

	c := bot.Default()
	c.ID = g.newID()
	c.Name = g.newName()
	g.put(c)
	return c.ID
}

// Add stores c as is, replacing any bot with the same ID.  A missing ID is
// generated.
func (g *Garage) Add(c bot.Config) string {
	g.lock.Lock()
	defer g.lock.Unlock()

	if c.ID == "" {
		c.ID = g.newID()
	}
	g.put(c)
	return c.ID
}

func (g *Garage) Duplicate(id string) (string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	orig, ok := g.bots[id]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "duplicating %s", id)
	}
	c := orig.Clone()
	c.ID = g.newID()
	c.Name = orig.Name + " Copy"
	g.put(c)
	return c.ID, nil
}

// Delete removes a bot.  Deleting the selected bot clears the selection.
func (g *Garage) Delete(id string) {
	g.lock.Lock()
	defer g.lock.Unlock()

	delete(g.bots, id)
	delete(g.revisions, id)
	delete(g.cache, id)
	if g.selected == id {
		g.selected = ""
	}
}

func (g *Garage) Select(id string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.bots[id]; !ok {
		return errors.Wrapf(ErrNotFound, "selecting %s", id)
	}
	g.selected = id
	return nil
}

// Selected returns the selected bot's ID, or "" if there is none.
func (g *Garage) Selected() string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.selected
}

func (g *Garage) Get(id string) (bot.Config, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	c, ok := g.bots[id]
	if !ok {
		return bot.Config{}, errors.Wrapf(ErrNotFound, "getting %s", id)
	}
	return c.Clone(), nil
}

// Computed returns the derived figures for a bot.  Results are cached until
// the bot is next written.
func (g *Garage) Computed(id string) (bot.Computed, error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.computedLocked(id)
}

func (g *Garage) computedLocked(id string) (bot.Computed, error) {
	c, ok := g.bots[id]
	if !ok {
		return bot.Computed{}, errors.Wrapf(ErrNotFound, "computing %s", id)
	}
	rev := g.revisions[id]
	entry, ok := g.cache[id]
	if !ok || entry.revision != rev {
		entry = cached{revision: rev, computed: bot.Compute(c)}
		g.cache[id] = entry
	}
	out := entry.computed
	out.Config = out.Config.Clone()
	return out, nil
}

// Update applies p to the selected bot.
func (g *Garage) Update(p bot.Patch) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.selected == "" {
		return ErrNoSelection
	}
	return g.updateLocked(g.selected, p)
}

// UpdateBot applies p to the given bot.
func (g *Garage) UpdateBot(id string, p bot.Patch) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.updateLocked(id, p)
}

func (g *Garage) updateLocked(id string, p bot.Patch) error {
	c, ok := g.bots[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "updating %s", id)
	}
	next, err := bot.ApplyEdit(c, p)
	if err != nil {
		return errors.Wrapf(err, "updating %s", c.Name)
	}
	g.put(next)
	return nil
}

func (g *Garage) Rename(id, name string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	c, ok := g.bots[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "renaming %s", id)
	}
	c.Name = name
	g.put(c)
	return nil
}

// List returns every bot ordered by name, then ID.
func (g *Garage) List() []bot.Config {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.listLocked()
}

func (g *Garage) listLocked() []bot.Config {
	out := make([]bot.Config, 0, len(g.bots))
	for _, c := range g.bots {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b bot.Config) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// ComputedAll returns the computed figures of every bot in List order.
func (g *Garage) ComputedAll() []bot.Computed {
	g.lock.Lock()
	defer g.lock.Unlock()

	bots := g.listLocked()
	out := make([]bot.Computed, 0, len(bots))
	for _, c := range bots {
		computed, _ := g.computedLocked(c.ID)
		out = append(out, computed)
	}
	return out
}
