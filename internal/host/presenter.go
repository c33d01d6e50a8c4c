package host

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
)

// TextPresenter renders combat notifications as lines of text. It implements
// combat.Presenter and encounter.Narrator.
type TextPresenter struct {
	mu      sync.Mutex
	w       io.Writer
	palette Palette
	player  combat.Player
	names   []string
}

// NewTextPresenter creates a TextPresenter writing to w. player supplies the
// HP and move list shown with each action menu.
//
// Precondition: w and player must be non-nil.
func NewTextPresenter(w io.Writer, player combat.Player, palette Palette) *TextPresenter {
	return &TextPresenter{w: w, player: player, palette: palette}
}

func (t *TextPresenter) line(s string) {
	_, _ = io.WriteString(t.w, s+"\n")
}

func (t *TextPresenter) name(i int) string {
	if i >= 0 && i < len(t.names) {
		return t.names[i]
	}
	return fmt.Sprintf("enemy %d", i+1)
}

func (t *TextPresenter) RosterShown(roster []combat.Combatant) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names = make([]string, len(roster))
	for i, c := range roster {
		t.names[i] = c.Name
	}
	if len(roster) == 1 && roster[0].IsBoss {
		t.line(t.palette.Colorf(Bold+Red, "%s blocks the way!", roster[0].Name))
	} else {
		t.line(t.palette.Colorize(Bold, "Enemies appear!"))
	}
	for i, c := range roster {
		t.line(fmt.Sprintf("  [%d] %s %s  HP %d/%d", i+1, c.Name,
			t.palette.Colorf(ElementColor(c.Element), "(%s)", c.Element), c.CurrentHP, c.MaxHP))
	}
}

func (t *TextPresenter) ActionMenuReady() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.palette.Colorf(Green, "Your turn. HP %d/%d", t.player.CurrentHP(), t.player.MaxHP()))
	for i, m := range t.player.Moves() {
		t.line(fmt.Sprintf("  %d) %s %s power %d, %s",
			i+1, m.Name, t.palette.Colorf(ElementColor(m.Element), "[%s]", m.Element), m.Power, m.Target))
	}
	t.line(t.palette.Colorize(Dim, "attack <move> [target] | flee"))
}

func (t *TextPresenter) Hit(h combat.Hit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "%s hits %s for %d damage.", h.Move.Name, t.name(h.Target), h.Amount)
	if note := classNote(h.Class); note != "" {
		b.WriteString(" ")
		b.WriteString(t.palette.Colorize(ClassColor(h.Class), note))
	}
	fmt.Fprintf(&b, " (%d HP left)", h.RemainingHP)
	t.line(b.String())
}

func (t *TextPresenter) Death(target int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.palette.Colorf(Bold, "%s is defeated!", t.name(target)))
}

func (t *TextPresenter) EnemyAttack(a combat.EnemyAttack) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "%s uses %s for %d damage.", a.EnemyName, a.MoveName, a.Amount)
	if note := classNote(a.Class); note != "" {
		b.WriteString(" ")
		b.WriteString(t.palette.Colorize(ClassColor(a.Class), note))
	}
	fmt.Fprintf(&b, " (your HP %d)", a.PlayerHP)
	t.line(b.String())
}

func (t *TextPresenter) FleeRejected(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.palette.Colorf(Yellow, "Couldn't escape: %s", reason))
}

func (t *TextPresenter) ActionRejected(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.palette.Colorf(Yellow, "Can't do that: %s", reason))
}

func (t *TextPresenter) EncounterEnded(outcome combat.Outcome, reward *content.Mask) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch outcome {
	case combat.Victory:
		t.line(t.palette.Colorize(Bold+Green, "Victory!"))
		if reward != nil {
			t.line(t.palette.Colorf(BrightYellow, "You obtained the %s!", reward.Name))
		}
	case combat.Defeat:
		t.line(t.palette.Colorize(Bold+Red, "You have fallen..."))
	case combat.Fled:
		t.line("You got away safely.")
	}
	t.names = nil
}

// Narrate prints a flavor line supplied by an encounter hook.
func (t *TextPresenter) Narrate(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.palette.Colorize(Dim, line))
}

// Println writes an unstyled line, serialized with notifications.
func (t *TextPresenter) Println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(s)
}

func classNote(c combat.MultiplierClass) string {
	switch c {
	case combat.Weak:
		return "It's super effective!"
	case combat.Resist:
		return "It's not very effective..."
	default:
		return ""
	}
}
