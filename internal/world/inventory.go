package world

import "maps"

// Item is a kind of inventory item.
type Item string

const (
	ItemWood  Item = "WOOD"
	ItemStone Item = "STONE"
	ItemMud   Item = "MUD"
	ItemMeat  Item = "MEAT"
	ItemSpear Item = "SPEAR"
)

// Inventory maps item kinds to counts. Counts never go negative.
type Inventory map[Item]int

// Count returns how many of an item are held.
func (inv Inventory) Count(item Item) int {
	return inv[item]
}

// Add increases an item count. Non-positive quantities are ignored.
func (inv Inventory) Add(item Item, qty int) {
	if qty <= 0 {
		return
	}
	inv[item] += qty
}

// Remove takes qty of an item. Returns false and leaves the inventory
// unchanged if not enough are held.
func (inv Inventory) Remove(item Item, qty int) bool {
	if qty < 0 || inv[item] < qty {
		return false
	}
	inv[item] -= qty
	if inv[item] == 0 {
		delete(inv, item)
	}
	return true
}

// Covers reports whether the inventory holds everything a recipe costs.
func (inv Inventory) Covers(r Recipe) bool {
	for item, qty := range r {
		if inv[item] < qty {
			return false
		}
	}
	return true
}

// Consume removes a recipe's cost atomically. Returns false and leaves the
// inventory unchanged if any ingredient is short.
func (inv Inventory) Consume(r Recipe) bool {
	if !inv.Covers(r) {
		return false
	}
	for item, qty := range r {
		inv.Remove(item, qty)
	}
	return true
}

// Clone returns a copy; a nil inventory clones to an empty one.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return Inventory{}
	}
	return maps.Clone(inv)
}

// Recipe is a resource cost.
type Recipe map[Item]int

// Recipes holds the per-recipe costs. Tunable through configuration.
type Recipes struct {
	Campfire Recipe `yaml:"campfire" json:"campfire"`
	House    Recipe `yaml:"house" json:"house"`
	Spear    Recipe `yaml:"spear" json:"spear"`
}

// DefaultRecipes returns the stock recipe costs.
func DefaultRecipes() Recipes {
	return Recipes{
		Campfire: Recipe{ItemWood: 2},
		House:    Recipe{ItemWood: 4, ItemStone: 2, ItemMud: 2},
		Spear:    Recipe{ItemWood: 1, ItemStone: 1},
	}
}
