package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/command"
	"github.com/cory-johannsen/tithe/internal/game/dice"
	"github.com/cory-johannsen/tithe/internal/game/encounter"
	"github.com/cory-johannsen/tithe/internal/game/session"
)

// historyShown caps the entries printed by the history command.
const historyShown = 10

// Saver persists the player session.
type Saver interface {
	Save(ctx context.Context) error
}

// FloorScope names the script scope for a floor.
func FloorScope(floor int) string {
	return fmt.Sprintf("floor_%d", floor)
}

// Console reads commands line by line and drives one player session.
// Encounters must be set before Run.
type Console struct {
	Commands   *command.Registry
	Session    *session.PlayerSession
	Encounters *encounter.Manager
	Source     dice.Source
	Out        *TextPresenter
	// Saver is optional; nil disables persistence.
	Saver  Saver
	Logger *zap.Logger

	stopped atomic.Bool
}

func (c *Console) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Run processes lines from in until quit, end of input, Stop, or ctx cancellation.
//
// Postcondition: Any active encounter is aborted and the session is saved.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.Out.Println(c.Out.palette.Colorize(Bold, "You stand at the entrance of "+c.Session.Progress.Floor().Name+". Type help for commands."))
	scanner := bufio.NewScanner(in)
	for !c.stopped.Load() && ctx.Err() == nil && scanner.Scan() {
		if c.Execute(ctx, scanner.Text()) {
			break
		}
	}
	c.shutdown(ctx)
	return scanner.Err()
}

// Stop ends Run after the current line.
func (c *Console) Stop() {
	c.stopped.Store(true)
}

func (c *Console) shutdown(ctx context.Context) {
	if c.Encounters.Abort() {
		c.Out.Println("The encounter fades as you leave.")
	}
	c.save(context.WithoutCancel(ctx))
}

func (c *Console) save(ctx context.Context) {
	if c.Saver == nil {
		return
	}
	if err := c.Saver.Save(ctx); err != nil {
		c.logger().Error("saving progress", zap.String("uid", c.Session.UID), zap.Error(err))
	}
}

// Execute runs one command line.
//
// Postcondition: Returns true when the player asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	p := command.Parse(line)
	if p.Command == "" {
		return false
	}
	cmd, ok := c.Commands.Resolve(p.Command)
	if !ok {
		c.Out.Println(fmt.Sprintf("Unknown command %q. Type help for a list.", p.Command))
		return false
	}
	c.logger().Debug("command", zap.String("command", cmd.Name), zap.Strings("args", p.Args))

	inCombat := c.Encounters.Active() != nil
	if cmd.InCombat && !inCombat {
		c.Out.Println("You are not in combat.")
		return false
	}
	if !cmd.InCombat && inCombat && blockedInCombat(cmd.Handler) {
		c.Out.Println("You can't do that in the middle of a fight.")
		return false
	}

	switch cmd.Handler {
	case command.HandlerExplore:
		c.explore()
	case command.HandlerBoss:
		c.challengeBoss()
	case command.HandlerDescend:
		c.descend(ctx)
	case command.HandlerAttack:
		c.attack(p)
	case command.HandlerFlee:
		_, err := c.Encounters.SubmitFlee()
		c.report(err)
	case command.HandlerMasks:
		c.listMasks()
	case command.HandlerEquip:
		c.equip(ctx, p)
	case command.HandlerStatus:
		c.status()
	case command.HandlerHistory:
		c.history()
	case command.HandlerHelp:
		c.help()
	case command.HandlerQuit:
		c.Out.Println("Farewell.")
		return true
	}
	return false
}

func blockedInCombat(handler string) bool {
	switch handler {
	case command.HandlerExplore, command.HandlerBoss, command.HandlerDescend, command.HandlerEquip:
		return true
	}
	return false
}

// report prints errors that no presenter notification already covered.
func (c *Console) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, encounter.ErrNoActiveEncounter):
		c.Out.Println("You are not in combat.")
	case errors.Is(err, combat.ErrNotPlayerTurn),
		errors.Is(err, combat.ErrInvalidMove),
		errors.Is(err, combat.ErrInvalidTarget):
	default:
		c.Out.Println("Error: " + err.Error())
	}
}

func (c *Console) explore() {
	floor := c.Session.Progress.Floor()
	enemies, ok := floor.RollEncounter(c.Source)
	if !ok {
		c.Out.Println(fmt.Sprintf("You wander the halls of %s. Nothing stirs.", floor.Name))
		return
	}
	c.Encounters.SetScope(FloorScope(floor.Number))
	if _, err := c.Encounters.BeginRegular(enemies); err != nil {
		c.report(err)
	}
}

func (c *Console) challengeBoss() {
	floor := c.Session.Progress.Floor()
	switch {
	case floor.Boss == nil:
		c.Out.Println("Nothing guards this floor.")
		return
	case c.Session.Progress.Unlocked():
		c.Out.Println("The guardian is gone and the way down is open. Type descend.")
		return
	}
	c.Encounters.SetScope(FloorScope(floor.Number))
	if _, err := c.Encounters.BeginBoss(floor.Boss); err != nil {
		c.report(err)
	}
}

func (c *Console) descend(ctx context.Context) {
	err := c.Session.Progress.Descend(c.Session.Player)
	switch {
	case errors.Is(err, session.ErrFloorLocked):
		c.Out.Println("The exit is sealed. Defeat the floor's guardian first.")
		return
	case errors.Is(err, session.ErrGameComplete):
		c.Out.Println("Every mask is yours. There is nowhere deeper to go.")
		return
	case err != nil:
		c.report(err)
		return
	}
	floor := c.Session.Progress.Floor()
	c.Out.Println(fmt.Sprintf("You descend to floor %d: %s. Your wounds close.", floor.Number, floor.Name))
	c.save(ctx)
}

func (c *Console) attack(p command.ParseResult) {
	move, err := p.Ordinal(0)
	if err != nil {
		c.Out.Println("usage: attack <move> [target] (" + err.Error() + ")")
		return
	}
	target := -1
	if len(p.Args) > 1 {
		if target, err = p.Ordinal(1); err != nil {
			c.Out.Println("usage: attack <move> [target] (" + err.Error() + ")")
			return
		}
	} else if active := c.Encounters.Active(); active != nil {
		target = firstLiving(active.Roster())
	}
	c.report(c.Encounters.SubmitMove(move, target))
}

func firstLiving(roster []combat.Combatant) int {
	for i, e := range roster {
		if e.CurrentHP > 0 {
			return i
		}
	}
	return -1
}

func (c *Console) listMasks() {
	masks := c.Session.Masks.Masks()
	if len(masks) == 0 {
		c.Out.Println("You carry no masks.")
		return
	}
	equipped := c.Session.Player.Mask()
	for i, m := range masks {
		marker := " "
		if equipped != nil && equipped.ID == m.ID {
			marker = "*"
		}
		c.Out.Println(fmt.Sprintf("%s %d) %s %s  HP%+d ATK%+d DEF%+d SPD%+d", marker, i+1, m.Name,
			c.Out.palette.Colorf(ElementColor(m.Element), "(%s)", m.Element),
			m.Bonus.HP, m.Bonus.Attack, m.Bonus.Defense, m.Bonus.Speed))
	}
}

func (c *Console) equip(ctx context.Context, p command.ParseResult) {
	if len(p.Args) == 0 {
		c.Out.Println("usage: equip <mask number or id>")
		return
	}
	var err error
	if idx, perr := p.Ordinal(0); perr == nil {
		err = c.Session.Masks.Equip(idx)
	} else {
		err = c.Session.Masks.EquipByID(p.Args[0])
	}
	if err != nil {
		c.Out.Println("You can't equip that: " + err.Error())
		return
	}
	c.Out.Println(fmt.Sprintf("You don the %s.", c.Session.Player.Mask().Name))
	c.save(ctx)
}

func (c *Console) status() {
	pl := c.Session.Player
	prog := c.Session.Progress
	floor := prog.Floor()
	c.Out.Println(fmt.Sprintf("%s  floor %d: %s", c.Session.Name, floor.Number, floor.Name))
	c.Out.Println(fmt.Sprintf("HP %d/%d  ATK %d  DEF %d  SPD %d", pl.CurrentHP(), pl.MaxHP(), pl.Attack(), pl.Defense(), pl.Speed()))
	mask := "none"
	if m := pl.Mask(); m != nil {
		mask = m.Name
	}
	exit := "sealed"
	switch {
	case prog.Complete():
		exit = "journey complete"
	case prog.Unlocked():
		exit = "open"
	}
	c.Out.Println(fmt.Sprintf("Mask: %s  Exit: %s", mask, exit))
}

func (c *Console) history() {
	recs := c.Encounters.History()
	if len(recs) == 0 {
		c.Out.Println("No encounters yet.")
		return
	}
	if len(recs) > historyShown {
		recs = recs[len(recs)-historyShown:]
	}
	for _, r := range recs {
		line := fmt.Sprintf("%-8s %-16s %2d rounds  %s", r.Outcome, r.Event, r.Rounds, strings.Join(r.Enemies, ", "))
		if r.Reward != nil {
			line += "  +" + r.Reward.Name
		}
		c.Out.Println(line)
	}
}

func (c *Console) help() {
	byCat := c.Commands.CommandsByCategory()
	for _, cat := range command.Categories {
		c.Out.Println(c.Out.palette.Colorize(Cyan, strings.ToUpper(cat[:1])+cat[1:]+":"))
		for _, cmd := range byCat[cat] {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage += " " + cmd.Usage
			}
			c.Out.Println(fmt.Sprintf("  %-24s %s", usage, cmd.Help))
		}
	}
}

// HandleEnded applies host policy after an encounter: a defeated player
// revives at full HP on the current floor, and the session is saved.
func (c *Console) HandleEnded(rec encounter.Record) {
	switch {
	case rec.Outcome == combat.Defeat:
		c.Session.Player.FullHeal()
		c.Out.Println("You awaken at the floor's entrance, restored.")
	case rec.Event == encounter.EventBossDefeated && c.Session.Progress.Complete():
		c.Out.Println(c.Out.palette.Colorize(Bold+BrightYellow, "The last guardian falls. Your journey is complete."))
	case rec.Event == encounter.EventBossDefeated:
		c.Out.Println("A passage opens downward. Type descend when ready.")
	}
	c.save(context.Background())
}
