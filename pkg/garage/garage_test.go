package garage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/cmlarsen/Robot-Combat-Tools/pkg/bot"
)

func testGarage() *Garage {
	g := New()
	n := 0
	g.newID = func() string {
		n++
		return fmt.Sprintf("bot-%d", n)
	}
	g.newName = func() string {
		return fmt.Sprintf("Bot %d", n)
	}
	return g
}

func TestCreateSelectUpdate(t *testing.T) {
	g := testGarage()
	id := g.Create()
	if id != "bot-1" {
		t.Fatalf("Unexpected ID %q", id)
	}
	if err := g.Update(bot.Patch{bot.FieldBatteryCells: 6}); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Update with nothing selected should fail, got %v", err)
	}
	if err := g.Select(id); err != nil {
		t.Fatal(err)
	}
	if err := g.Update(bot.Patch{bot.FieldBatteryCells: 6}); err != nil {
		t.Fatal(err)
	}
	c, err := g.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if c.Battery.Cells != 6 {
		t.Fatalf("Update not applied, cells = %d", c.Battery.Cells)
	}
	computed, err := g.Computed(id)
	if err != nil {
		t.Fatal(err)
	}
	if computed.Volts != c.Volts() {
		t.Fatalf("Computed volts %v", computed.Volts)
	}
}

func TestFailedUpdateLeavesBot(t *testing.T) {
	g := testGarage()
	id := g.Create()
	before, _ := g.Get(id)
	if err := g.UpdateBot(id, bot.Patch{bot.FieldBatteryCells: 0.5}); !errors.Is(err, bot.ErrNotWhole) {
		t.Fatalf("Expected ErrNotWhole, got %v", err)
	}
	after, _ := g.Get(id)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("Failed update changed the bot")
	}
}

func TestComputedIsCached(t *testing.T) {
	g := testGarage()
	id := g.Create()
	if _, err := g.Computed(id); err != nil {
		t.Fatal(err)
	}
	first := g.cache[id].revision

	if _, err := g.Computed(id); err != nil {
		t.Fatal(err)
	}
	if g.cache[id].revision != first {
		t.Fatalf("Unchanged bot was recomputed")
	}

	if err := g.UpdateBot(id, bot.Patch{bot.FieldWeaponMotorKv: 1000}); err != nil {
		t.Fatal(err)
	}
	c, err := g.Computed(id)
	if err != nil {
		t.Fatal(err)
	}
	if g.cache[id].revision == first {
		t.Fatalf("Edited bot was not recomputed")
	}
	if c.Weapon.MotorKv != 1000 {
		t.Fatalf("Stale computed figures: kv %v", c.Weapon.MotorKv)
	}

	// Callers can't reach into the cache.
	*c.General.Mass = 42
	again, _ := g.Computed(id)
	if *again.General.Mass == 42 {
		t.Fatalf("Cached result was modified through a returned value")
	}
}

func TestDuplicate(t *testing.T) {
	g := testGarage()
	id := g.Create()
	if err := g.Rename(id, "Whirly"); err != nil {
		t.Fatal(err)
	}
	dup, err := g.Duplicate(id)
	if err != nil {
		t.Fatal(err)
	}
	if dup == id {
		t.Fatalf("Duplicate reused the ID")
	}
	c, _ := g.Get(dup)
	if c.Name != "Whirly Copy" {
		t.Fatalf("Duplicate name %q", c.Name)
	}
	if err := g.UpdateBot(dup, bot.Patch{bot.FieldGeneralMass: 900}); err != nil {
		t.Fatal(err)
	}
	orig, _ := g.Get(id)
	if orig.General.MassG() == 900 {
		t.Fatalf("Editing the copy changed the original")
	}

	if _, err := g.Duplicate("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	g := testGarage()
	a := g.Create()
	b := g.Create()
	if err := g.Select(a); err != nil {
		t.Fatal(err)
	}
	g.Delete(b)
	if g.Selected() != a {
		t.Fatalf("Deleting another bot changed the selection")
	}
	g.Delete(a)
	if g.Selected() != "" {
		t.Fatalf("Selection should be cleared, got %q", g.Selected())
	}
	if _, err := g.Computed(a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err := g.Select(a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListOrder(t *testing.T) {
	g := testGarage()
	for _, name := range []string{"Zed", "Alpha", "Mid"} {
		id := g.Create()
		if err := g.Rename(id, name); err != nil {
			t.Fatal(err)
		}
	}
	var names []string
	for _, c := range g.List() {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "Alpha,Mid,Zed" {
		t.Fatalf("List order %v", names)
	}
	if all := g.ComputedAll(); len(all) != 3 || all[0].Name != "Alpha" {
		t.Fatalf("ComputedAll out of order")
	}
}

func TestSaveLoad(t *testing.T) {
	g := testGarage()
	a := g.Create()
	b := g.Create()
	if err := g.UpdateBot(b, bot.Patch{bot.FieldBatteryCells: 4, bot.FieldGeneralMass: 1500}); err != nil {
		t.Fatal(err)
	}
	if err := g.Select(b); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "garage.yaml")
	if err := g.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Selected() != b {
		t.Fatalf("Selection not restored: %q", loaded.Selected())
	}
	if !reflect.DeepEqual(loaded.List(), g.List()) {
		t.Fatalf("Bots not restored:\n%+v\n%+v", loaded.List(), g.List())
	}
	if _, err := loaded.Get(a); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentSaves(t *testing.T) {
	g := testGarage()
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, g.Create())
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "garage.yaml")

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for n := 1; n <= 5; n++ {
				if err := g.UpdateBot(id, bot.Patch{bot.FieldWeaponMotorKv: float64(1000*i + n)}); err != nil {
					t.Error(err)
					return
				}
				if err := g.Save(path); err != nil {
					t.Error(err)
					return
				}
			}
		}(i, id)
	}
	wg.Wait()

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// Every update happened before the last save took its snapshot.
	if !reflect.DeepEqual(loaded.List(), g.List()) {
		t.Fatalf("Saved garage is stale:\n%+v\n%+v", loaded.List(), g.List())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Temporary files left behind: %v", entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected a not-exist error, got %v", err)
	}
}

func TestLoadBotKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	doc := `
name: Thumper
battery:
  cells: 6
weapon:
  motor_kv: 1100
`
	if err := os.WriteFile(path, []byte(doc), 0666); err != nil {
		t.Fatal(err)
	}
	c, err := LoadBot(path)
	if err != nil {
		t.Fatal(err)
	}
	def := bot.Default()
	if c.Name != "Thumper" || c.Battery.Cells != 6 || c.Weapon.MotorKv != 1100 {
		t.Fatalf("File values not applied: %+v", c)
	}
	if c.Weapon.MOI != def.Weapon.MOI || c.Drive != def.Drive {
		t.Fatalf("Missing keys lost their defaults: %+v", c)
	}
	if c.General.WheelBaseWidth != nil || c.General.MassG() != 1 {
		t.Fatalf("Missing general fields should be unset: %+v", c.General)
	}
}

func TestSaveBotLoadBot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	c := bot.Default()
	c.Name = "Round Trip"
	c.Weapon.Typical.Throttle = 0.35
	if err := SaveBot(path, c); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBot(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Fatalf("Saved and loaded bot differ:\n%+v\n%+v", got, c)
	}
}

func TestRandomName(t *testing.T) {
	for i := 0; i < 50; i++ {
		words := strings.Fields(RandomName())
		if len(words) != 3 {
			t.Fatalf("Unexpected name %v", words)
		}
		if words[0] == words[1] {
			t.Fatalf("Repeated adjective in %v", words)
		}
	}
}
