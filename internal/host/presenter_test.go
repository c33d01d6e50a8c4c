package host_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/element"
	"github.com/cory-johannsen/tithe/internal/game/session"
	"github.com/cory-johannsen/tithe/internal/host"
)

func newPresenter(palette host.Palette) (*host.TextPresenter, *bytes.Buffer) {
	var buf bytes.Buffer
	return host.NewTextPresenter(&buf, session.NewPlayer(session.DefaultBaseStats), palette), &buf
}

func TestTextPresenter_HitNotes(t *testing.T) {
	p, buf := newPresenter(host.Palette{})
	p.RosterShown([]combat.Combatant{{Name: "Frost Sprite", Element: element.Ice, MaxHP: 40, CurrentHP: 40}})
	buf.Reset()

	fireball := &content.Move{Name: "Fireball"}
	p.Hit(combat.Hit{Target: 0, Move: fireball, Amount: 40, Class: combat.Weak, RemainingHP: 0})
	p.Death(0)
	assert.Equal(t,
		"Fireball hits Frost Sprite for 40 damage. It's super effective! (0 HP left)\nFrost Sprite is defeated!\n",
		buf.String())

	buf.Reset()
	p.EnemyAttack(combat.EnemyAttack{EnemyName: "Frost Sprite", MoveName: "Frost Lance", Amount: 5, Class: combat.Resist, PlayerHP: 95})
	assert.Equal(t, "Frost Sprite uses Frost Lance for 5 damage. It's not very effective... (your HP 95)\n", buf.String())
}

func TestTextPresenter_UnknownTargetName(t *testing.T) {
	p, buf := newPresenter(host.Palette{})
	p.Death(2)
	assert.Equal(t, "enemy 3 is defeated!\n", buf.String())
}

func TestTextPresenter_EncounterEndedClearsRoster(t *testing.T) {
	p, buf := newPresenter(host.Palette{})
	p.RosterShown([]combat.Combatant{{Name: "Imp"}})
	p.EncounterEnded(combat.Victory, &content.Mask{Name: "Inferno Mask"})
	assert.Contains(t, buf.String(), "Victory!\nYou obtained the Inferno Mask!\n")

	buf.Reset()
	p.Death(0)
	assert.Equal(t, "enemy 1 is defeated!\n", buf.String())
}

func TestTextPresenter_MenuWithoutMask(t *testing.T) {
	p, buf := newPresenter(host.Palette{})
	p.ActionMenuReady()
	assert.Equal(t, "Your turn. HP 100/100\nattack <move> [target] | flee\n", buf.String())
}

func TestTextPresenter_Palette(t *testing.T) {
	p, buf := newPresenter(host.Palette{Enabled: true})
	p.Narrate("The air grows hot.")
	assert.Equal(t, host.Dim+"The air grows hot."+host.Reset+"\n", buf.String())
	assert.Equal(t, "The air grows hot.\n", host.StripANSI(buf.String()))
}

func TestPaletteDisabledIsPlain(t *testing.T) {
	assert.Equal(t, "x", host.Palette{}.Colorize(host.Red, "x"))
	assert.Equal(t, "n=3", host.Palette{}.Colorf(host.Red, "n=%d", 3))
	assert.Equal(t, "x", host.Palette{Enabled: true}.Colorize("", "x"))
}

func TestElementColor(t *testing.T) {
	assert.Equal(t, host.BrightRed, host.ElementColor(element.Fire))
	assert.Equal(t, host.White, host.ElementColor(element.None))
}
