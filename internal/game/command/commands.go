// Package command provides the battle host's command registry, parser, and
// built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryExplore = "explore"
	CategoryCombat  = "combat"
	CategoryMasks   = "masks"
	CategorySystem  = "system"
)

// Handler identifiers mapping commands to host actions.
const (
	HandlerExplore = "explore"
	HandlerBoss    = "boss"
	HandlerDescend = "descend"
	HandlerAttack  = "attack"
	HandlerFlee    = "flee"
	HandlerMasks   = "masks"
	HandlerEquip   = "equip"
	HandlerStatus  = "status"
	HandlerHistory = "history"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "<move> [target]".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler selects the host action.
	Handler string
	// InCombat reports whether the command is only valid during an encounter.
	InCombat bool
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "explore", Aliases: []string{"x", "walk"}, Help: "Search the floor for enemies", Category: CategoryExplore, Handler: HandlerExplore},
		{Name: "boss", Help: "Challenge the floor's boss", Category: CategoryExplore, Handler: HandlerBoss},
		{Name: "descend", Aliases: []string{"down"}, Help: "Take the unlocked exit to the next floor", Category: CategoryExplore, Handler: HandlerDescend},

		{Name: "attack", Aliases: []string{"a", "att"}, Usage: "<move> [target]", Help: "Use a move; target is required for single-target moves", Category: CategoryCombat, Handler: HandlerAttack, InCombat: true},
		{Name: "flee", Aliases: []string{"run"}, Help: "Attempt to escape the encounter", Category: CategoryCombat, Handler: HandlerFlee, InCombat: true},

		{Name: "masks", Aliases: []string{"m", "inv"}, Help: "List collected masks", Category: CategoryMasks, Handler: HandlerMasks},
		{Name: "equip", Aliases: []string{"eq"}, Usage: "<mask>", Help: "Equip a collected mask by number or ID", Category: CategoryMasks, Handler: HandlerEquip},

		{Name: "status", Aliases: []string{"st"}, Help: "Show HP, stats, and floor", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "history", Help: "Show recent encounter outcomes", Category: CategorySystem, Handler: HandlerHistory},
		{Name: "help", Aliases: []string{"?"}, Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q", "exit"}, Help: "Save and leave", Category: CategorySystem, Handler: HandlerQuit},
	}
}
