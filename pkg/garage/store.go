package garage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
)

// storedBot decodes over the default bot, so keys missing from a file keep
// their defaults.  General is the exception: its fields read as 1 when absent.
type storedBot bot.Config

func (s *storedBot) UnmarshalYAML(unmarshal func(interface{}) error) error {
	c := bot.Default()
	c.General = bot.General{}
	if err := unmarshal(&c); err != nil {
		return err
	}
	*s = storedBot(c)
	return nil
}

type garageFile struct {
	Selected string      `yaml:"selected,omitempty"`
	Bots     []storedBot `yaml:"bots"`
}

// Load reads a garage previously written by Save.
func Load(path string) (*Garage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading garage")
	}
	var f garageFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	g := New()
	for _, b := range f.Bots {
		g.Add(bot.Config(b))
	}
	if f.Selected != "" {
		if err := g.Select(f.Selected); err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
	}
	return g, nil
}

// writeFile replaces path with data so readers never see a partial file.
func writeFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Save writes every bot and the current selection to path.  Concurrent saves
// are applied in order.
func (g *Garage) Save(path string) error {
	g.saveLock.Lock()
	defer g.saveLock.Unlock()

	g.lock.Lock()
	f := garageFile{Selected: g.selected}
	for _, c := range g.listLocked() {
		f.Bots = append(f.Bots, storedBot(c))
	}
	g.lock.Unlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return errors.Wrap(err, "encoding garage")
	}
	if err := writeFile(path, data); err != nil {
		return errors.Wrap(err, "writing garage")
	}
	return nil
}

// LoadBot reads a single bot.  Keys missing from the file keep the values of a
// freshly created bot.
func LoadBot(path string) (bot.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bot.Config{}, errors.Wrap(err, "reading bot")
	}
	s := storedBot(bot.Default())
	s.General = bot.General{}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return bot.Config{}, errors.Wrapf(err, "parsing %s", path)
	}
	return bot.Config(s), nil
}

func SaveBot(path string, c bot.Config) error {
	data, err := yaml.Marshal(storedBot(c))
	if err != nil {
		return errors.Wrap(err, "encoding bot")
	}
	if err := writeFile(path, data); err != nil {
		return errors.Wrap(err, "writing bot")
	}
	return nil
}
