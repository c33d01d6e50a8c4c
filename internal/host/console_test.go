package host_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/command"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/encounter"
	"github.com/cory-johannsen/tithe/internal/game/session"
	"github.com/cory-johannsen/tithe/internal/host"
)

// zeroSource always draws the lowest value.
type zeroSource struct{}

func (zeroSource) Intn(int) int      { return 0 }
func (zeroSource) Float64() float64 { return 0 }

type countingSaver struct{ saves int }

func (s *countingSaver) Save(context.Context) error {
	s.saves++
	return nil
}

type fixture struct {
	reg     *content.Registry
	sess    *session.PlayerSession
	out     *bytes.Buffer
	saver   *countingSaver
	console *host.Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := content.LoadDir("../../content")
	require.NoError(t, err)
	sess, err := session.NewManager(reg).AddPlayer("p1", "Vessel", session.Options{
		Base:         session.DefaultBaseStats,
		GrantStarter: true,
	})
	require.NoError(t, err)

	f := &fixture{reg: reg, sess: sess, out: &bytes.Buffer{}, saver: &countingSaver{}}
	pres := host.NewTextPresenter(f.out, sess.Player, host.Palette{})
	f.console = &host.Console{
		Commands: command.DefaultRegistry(),
		Session:  sess,
		Source:   zeroSource{},
		Out:      pres,
		Saver:    f.saver,
	}
	enc, err := encounter.NewManager(encounter.Config{
		Player:      sess.Player,
		Inventory:   sess,
		Progression: sess,
		Source:      zeroSource{},
		Presenter:   pres,
		OnEnded:     f.console.HandleEnded,
	})
	require.NoError(t, err)
	f.console.Encounters = enc
	return f
}

func (f *fixture) exec(line string) bool {
	f.out.Reset()
	return f.console.Execute(context.Background(), line)
}

func TestConsole_UnknownAndBlankCommands(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.exec("   "))
	assert.Empty(t, f.out.String())

	f.exec("dance")
	assert.Contains(t, f.out.String(), `Unknown command "dance"`)
}

func TestConsole_CombatCommandOutsideCombat(t *testing.T) {
	f := newFixture(t)
	f.exec("attack 1 1")
	assert.Contains(t, f.out.String(), "You are not in combat.")
	f.exec("flee")
	assert.Contains(t, f.out.String(), "You are not in combat.")
}

func TestConsole_ExploreAndWin(t *testing.T) {
	f := newFixture(t)
	f.exec("explore")
	require.NotNil(t, f.console.Encounters.Active())
	assert.Contains(t, f.out.String(), "Enemies appear!")
	assert.Contains(t, f.out.String(), "[1] Ember Wraith (fire)  HP 30/30")
	assert.Contains(t, f.out.String(), "Your turn.")

	for i := 0; i < 10 && f.console.Encounters.Active() != nil; i++ {
		f.exec("attack 1")
	}
	require.Nil(t, f.console.Encounters.Active())
	assert.Contains(t, f.out.String(), "Ember Wraith is defeated!")
	assert.Contains(t, f.out.String(), "Victory!")
	assert.Equal(t, f.sess.Player.MaxHP(), f.sess.Player.CurrentHP())
	assert.Equal(t, 1, f.saver.saves)

	f.exec("history")
	assert.Contains(t, f.out.String(), "victory")
	assert.Contains(t, f.out.String(), "combat_won")
}

func TestConsole_BlockedDuringCombat(t *testing.T) {
	f := newFixture(t)
	f.exec("explore")
	require.NotNil(t, f.console.Encounters.Active())

	for _, line := range []string{"explore", "boss", "descend", "equip 1"} {
		f.exec(line)
		assert.Contains(t, f.out.String(), "middle of a fight", line)
	}
	f.exec("status")
	assert.Contains(t, f.out.String(), "HP ")
}

func TestConsole_AttackUsage(t *testing.T) {
	f := newFixture(t)
	f.exec("explore")
	f.exec("attack")
	assert.Contains(t, f.out.String(), "usage: attack")
	f.exec("attack one")
	assert.Contains(t, f.out.String(), "usage: attack")
}

func TestConsole_InvalidMoveRenderedOnce(t *testing.T) {
	f := newFixture(t)
	f.exec("explore")
	f.exec("attack 9")
	assert.Equal(t, 1, strings.Count(f.out.String(), "Can't do that"))
	assert.NotContains(t, f.out.String(), "Error:")
}

func TestConsole_Flee(t *testing.T) {
	f := newFixture(t)
	f.exec("explore")
	f.exec("flee")
	assert.Contains(t, f.out.String(), "You got away safely.")
	assert.Nil(t, f.console.Encounters.Active())
}

func TestConsole_BossAndDescend(t *testing.T) {
	f := newFixture(t)
	f.exec("descend")
	assert.Contains(t, f.out.String(), "The exit is sealed.")

	f.exec("boss")
	assert.Contains(t, f.out.String(), "Inferno Mask blocks the way!")
	f.exec("flee")
	assert.Contains(t, f.out.String(), "Couldn't escape")
	require.True(t, f.console.Encounters.Abort())

	f.sess.Progress.BossDefeated(f.reg.Mask("inferno_mask"))
	f.exec("boss")
	assert.Contains(t, f.out.String(), "way down is open")

	f.sess.Player.TakeDamage(30)
	f.exec("descend")
	assert.Contains(t, f.out.String(), "You descend to floor 2: Frozen Cavern.")
	assert.Equal(t, f.sess.Player.MaxHP(), f.sess.Player.CurrentHP())
	assert.Equal(t, 1, f.saver.saves)
}

func TestConsole_MasksAndEquip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.GrantMask(f.reg.Mask("inferno_mask")))

	f.exec("masks")
	assert.Contains(t, f.out.String(), "* 1) Initiate's Mask (light)")
	assert.Contains(t, f.out.String(), "  2) Inferno Mask (fire)  HP+15 ATK+4 DEF+2 SPD+1")

	f.exec("equip 2")
	assert.Contains(t, f.out.String(), "You don the Inferno Mask.")
	assert.Equal(t, "inferno_mask", f.sess.Player.Mask().ID)

	f.exec("equip initiates_mask")
	assert.Equal(t, "initiates_mask", f.sess.Player.Mask().ID)

	f.exec("equip glacial_mask")
	assert.Contains(t, f.out.String(), "You can't equip that")
	assert.Equal(t, 2, f.saver.saves)
}

func TestConsole_HelpListsCategories(t *testing.T) {
	f := newFixture(t)
	f.exec("help")
	out := f.out.String()
	for _, want := range []string{"Explore:", "Combat:", "Masks:", "System:", "attack <move> [target]"} {
		assert.Contains(t, out, want)
	}
}

func TestConsole_RunQuitSaves(t *testing.T) {
	f := newFixture(t)
	err := f.console.Run(context.Background(), strings.NewReader("status\nquit\nstatus\n"))
	require.NoError(t, err)
	out := f.out.String()
	assert.Contains(t, out, "Ember Crypt")
	assert.Contains(t, out, "Farewell.")
	assert.Equal(t, 1, strings.Count(out, "Mask: Initiate's Mask"))
	assert.Equal(t, 1, f.saver.saves)
}

func TestConsole_RunEOFAbortsEncounter(t *testing.T) {
	f := newFixture(t)
	err := f.console.Run(context.Background(), strings.NewReader("explore\n"))
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "The encounter fades as you leave.")
	assert.Nil(t, f.console.Encounters.Active())
	assert.Empty(t, f.console.Encounters.History())
}

func TestConsole_StopEndsRun(t *testing.T) {
	f := newFixture(t)
	f.console.Stop()
	require.NoError(t, f.console.Run(context.Background(), strings.NewReader("status\n")))
	assert.NotContains(t, f.out.String(), "HP ")
}

func TestConsole_HandleEndedDefeatRevives(t *testing.T) {
	f := newFixture(t)
	f.sess.Player.TakeDamage(500)
	f.console.HandleEnded(encounter.Record{Outcome: combat.Defeat, Event: encounter.EventPlayerDefeated})
	assert.Equal(t, f.sess.Player.MaxHP(), f.sess.Player.CurrentHP())
	assert.Contains(t, f.out.String(), "You awaken")
	assert.Equal(t, 1, f.saver.saves)
}
